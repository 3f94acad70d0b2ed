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

func GetOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		option, err := app.Options.Get(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, "options.get", err)
			return
		}
		render.JSON(w, r, option)
	}
}

func CreateOption(app app.App) http.HandlerFunc {
	type createRequest struct {
		QuestionID uuid.UUID `json:"questionId"`
		survey.OptionSpec
	}

	return func(w http.ResponseWriter, r *http.Request) {
		req := createRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Text == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "options.create", "text is required")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		option, err := app.Options.Add(r.Context(), req.QuestionID, req.OptionSpec, actor)
		if err != nil {
			httpx.WriteError(w, "options.create", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, option)
	}
}

func EditOption(app app.App) http.HandlerFunc {
	type editRequest struct {
		Text string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		req := editRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		option, err := app.Options.Edit(r.Context(), id, req.Text, actor)
		if err != nil {
			httpx.WriteError(w, "options.edit", err)
			return
		}
		render.JSON(w, r, option)
	}
}

func ToggleOptionActive(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Options.ToggleActive(r.Context(), id, actor)
		if err != nil {
			httpx.WriteError(w, "options.active_switch", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Options.HardDelete(r.Context(), id, actor)
		if err != nil {
			httpx.WriteError(w, "options.hard_delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
