package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"

	"github.com/iic/form-system/app"
	"github.com/iic/form-system/httpx"
	"github.com/iic/form-system/log"
	"github.com/iic/form-system/routes/middlewares"
	"github.com/iic/form-system/survey"
)

func GetQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		question, err := app.Questions.Get(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, "questions.get", err)
			return
		}
		render.JSON(w, r, question)
	}
}

func CreateQuestion(app app.App) http.HandlerFunc {
	type createRequest struct {
		FormID uuid.UUID `json:"formId"`
		survey.QuestionSpec
	}

	return func(w http.ResponseWriter, r *http.Request) {
		req := createRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Text == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "questions.create", "text is required")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		question, err := app.Questions.Add(r.Context(), req.FormID, req.QuestionSpec, actor)
		if err != nil {
			httpx.WriteError(w, "questions.create", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func EditQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		patch := survey.QuestionPatch{}
		err = render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		question, err := app.Questions.Edit(r.Context(), id, patch, actor)
		if err != nil {
			httpx.WriteError(w, "questions.edit", err)
			return
		}
		render.JSON(w, r, question)
	}
}

func ToggleQuestionActive(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Questions.ToggleActive(r.Context(), id, actor)
		if err != nil {
			httpx.WriteError(w, "questions.active_switch", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Questions.HardDelete(r.Context(), id, actor)
		if err != nil {
			httpx.WriteError(w, "questions.hard_delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ReorderOptions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		req := reorderRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Options.Reorder(r.Context(), id, req.OrderedIDs, actor)
		if err != nil {
			httpx.WriteError(w, "questions.reorder_options", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
