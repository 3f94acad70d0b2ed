package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iic/form-system/app"
	"github.com/iic/form-system/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	auth := middlewares.Auth(app.TokenSecret, app.Users)
	maybeAuth := middlewares.OptionalAuth(app.TokenSecret, app.Users)

	api.Route("/auth", func(r chi.Router) {
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
		r.Post("/refresh", Refresh(app))
	})

	api.Route("/forms", func(r chi.Router) {
		r.Get("/", ListForms(app))
		r.Get("/{id}", GetForm(app))

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/create", CreateForm(app))
			r.Patch("/{id}/edit", EditForm(app))
			r.Patch("/{id}/active-switch", ToggleFormActive(app))
			r.Patch("/{id}/expire", SetFormExpiry(app))
			r.Delete("/{id}/hard-delete", DeleteForm(app))
			r.Patch("/{id}/questions/reorder", ReorderQuestions(app))
		})
	})

	api.Route("/questions", func(r chi.Router) {
		r.Get("/{id}", GetQuestion(app))

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/create", CreateQuestion(app))
			r.Patch("/{id}/edit", EditQuestion(app))
			r.Patch("/{id}/active-switch", ToggleQuestionActive(app))
			r.Delete("/{id}/hard-delete", DeleteQuestion(app))
			r.Patch("/{id}/options/reorder", ReorderOptions(app))
		})
	})

	api.Route("/options", func(r chi.Router) {
		r.Get("/{id}", GetOption(app))

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/create", CreateOption(app))
			r.Patch("/{id}/edit", EditOption(app))
			r.Patch("/{id}/active-switch", ToggleOptionActive(app))
			r.Delete("/{id}/hard-delete", DeleteOption(app))
		})
	})

	api.Route("/submissions", func(r chi.Router) {
		r.With(maybeAuth).Post("/create", CreateSubmission(app))
		r.Get("/", ListSubmissions(app))
		r.Get("/{id}", GetSubmission(app))
		r.Delete("/{id}/soft-delete", SoftDeleteSubmission(app))
		r.Delete("/{id}/hard-delete", HardDeleteSubmission(app))
	})

	return api
}
