package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"

	"github.com/iic/form-system/app"
	"github.com/iic/form-system/httpx"
	"github.com/iic/form-system/log"
	"github.com/iic/form-system/model"
	"github.com/iic/form-system/routes/middlewares"
	"github.com/iic/form-system/survey"
)

func CreateSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := survey.SubmissionSpec{}
		err := render.DecodeJSON(r.Body, &spec)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		// missing identity means an anonymous submission, not a failure
		var respondent *model.User
		if user, ok := middlewares.CurrentUser(r); ok {
			respondent = &user
		}

		submission, err := app.Submissions.Create(r.Context(), spec, respondent)
		if err != nil {
			httpx.WriteError(w, "submissions.create", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, submission)
	}
}

func GetSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		submission, err := app.Submissions.Get(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, "submissions.get", err)
			return
		}
		render.JSON(w, r, submission)
	}
}

func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := listSubmissions(app, r)
		if err != nil {
			httpx.WriteError(w, "submissions.list", err)
			return
		}
		render.JSON(w, r, map[string]any{"submissions": list})
	}
}

func listSubmissions(app app.App, r *http.Request) ([]model.Submission, error) {
	query := r.URL.Query()
	if form := query.Get("formId"); form != "" {
		formID, err := uuid.FromString(form)
		if err != nil {
			return nil, survey.ValidationError{Reason: "malformed formId"}
		}
		return app.Submissions.ListByForm(r.Context(), formID)
	}
	if respondent := query.Get("respondentId"); respondent != "" {
		respondentID, err := uuid.FromString(respondent)
		if err != nil {
			return nil, survey.ValidationError{Reason: "malformed respondentId"}
		}
		if _, err := app.Users.ByID(r.Context(), respondentID); err != nil {
			return nil, err
		}
		return app.Submissions.ListByRespondent(r.Context(), respondentID)
	}
	return app.Submissions.ListAll(r.Context())
}

func SoftDeleteSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Submissions.SoftDelete(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, "submissions.soft_delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HardDeleteSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Submissions.HardDelete(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, "submissions.hard_delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
