package survey_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iic/form-system/config"
	"github.com/iic/form-system/database"
	"github.com/iic/form-system/model"
	"github.com/iic/form-system/survey"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "formsystem.sqlite")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func newTestUser(t *testing.T, db *sql.DB, username string) model.User {
	t.Helper()

	user, err := survey.NewUsers(db).Register(context.Background(), username, "hunter2")
	require.NoError(t, err)
	return user
}

// newTestForm creates a form with one required short-answer question and one
// optional checkbox question carrying two options.
func newTestForm(t *testing.T, db *sql.DB, creator model.User) model.Form {
	t.Helper()

	form, err := survey.NewForms(db).Create(context.Background(), survey.FormSpec{
		Title:       "Team feedback",
		Description: "Quarterly team feedback round",
		Questions: []survey.QuestionSpec{
			{
				Text:         "What went well?",
				Type:         "SHORT_ANSWER",
				Required:     true,
				DisplayOrder: 1,
			},
			{
				Text:         "Which areas need work?",
				Type:         "CHECKBOX",
				DisplayOrder: 2,
				Options: []survey.OptionSpec{
					{Text: "Planning", DisplayOrder: 1},
					{Text: "Communication", DisplayOrder: 2},
				},
			},
		},
	}, creator)
	require.NoError(t, err)
	return form
}
