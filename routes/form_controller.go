package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"

	"github.com/iic/form-system/app"
	"github.com/iic/form-system/httpx"
	"github.com/iic/form-system/log"
	"github.com/iic/form-system/routes/middlewares"
	"github.com/iic/form-system/survey"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.FromString(chi.URLParam(r, name))
}

type reorderRequest struct {
	OrderedIDs []uuid.UUID `json:"orderedIds"`
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := survey.FormSpec{}
		err := render.DecodeJSON(r.Body, &spec)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if spec.Title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "forms.create", "title is required")
			return
		}

		actor, ok := middlewares.CurrentUser(r)
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "forms.create.actor")
			return
		}

		form, err := app.Forms.Create(r.Context(), spec, actor)
		if err != nil {
			httpx.WriteError(w, "forms.create", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if creator := r.URL.Query().Get("creatorId"); creator != "" {
			creatorID, err := uuid.FromString(creator)
			if err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.creatorId")
				return
			}
			list, err := app.Forms.ListByCreator(r.Context(), creatorID)
			if err != nil {
				httpx.WriteError(w, "forms.list_by_creator", err)
				return
			}
			render.JSON(w, r, map[string]any{"forms": list})
			return
		}

		list, err := app.Forms.ListAll(r.Context())
		if err != nil {
			httpx.WriteError(w, "forms.list", err)
			return
		}
		render.JSON(w, r, map[string]any{"forms": list})
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form, err := app.Forms.Get(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, "forms.get", err)
			return
		}
		render.JSON(w, r, form)
	}
}

func EditForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		patch := survey.FormPatch{}
		err = render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		form, err := app.Forms.Edit(r.Context(), id, patch, actor)
		if err != nil {
			httpx.WriteError(w, "forms.edit", err)
			return
		}
		render.JSON(w, r, form)
	}
}

func ToggleFormActive(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Forms.ToggleActive(r.Context(), id, actor)
		if err != nil {
			httpx.WriteError(w, "forms.active_switch", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SetFormExpiry(app app.App) http.HandlerFunc {
	type expiryRequest struct {
		ExpiresAt *time.Time `json:"expiresAt"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		req := expiryRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		form, err := app.Forms.SetExpiry(r.Context(), id, req.ExpiresAt, actor)
		if err != nil {
			httpx.WriteError(w, "forms.expire", err)
			return
		}
		render.JSON(w, r, form)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		actor, _ := middlewares.CurrentUser(r)
		err = app.Forms.HardDelete(r.Context(), id, actor)
		if err != nil {
			httpx.WriteError(w, "forms.hard_delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ReorderQuestions(app app.App) http.HandlerFunc {
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
		err = app.Questions.Reorder(r.Context(), id, req.OrderedIDs, actor)
		if err != nil {
			httpx.WriteError(w, "forms.reorder_questions", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
