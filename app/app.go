package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/iic/form-system/config"
	"github.com/iic/form-system/survey"
)

// App aggregates everything the route handlers need.
type App struct {
	*oauth.BearerServer
	config.Config

	Forms       *survey.Forms
	Questions   *survey.Questions
	Options     *survey.Options
	Submissions *survey.Submissions
	Users       *survey.Users
}

func New(db *sql.DB, bearerServer *oauth.BearerServer, cfg config.Config) App {
	return App{
		BearerServer: bearerServer,
		Config:       cfg,
		Forms:        survey.NewForms(db),
		Questions:    survey.NewQuestions(db),
		Options:      survey.NewOptions(db),
		Submissions:  survey.NewSubmissions(db),
		Users:        survey.NewUsers(db),
	}
}
