package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iic/form-system/log"
	"github.com/iic/form-system/survey"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	w.WriteHeader(http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// WriteError maps a survey error onto the HTTP response. Typed failures turn
// into client errors carrying the rule that was violated; anything else is an
// internal error.
func WriteError(w http.ResponseWriter, code string, err error) {
	var (
		notFound      survey.NotFoundError
		forbidden     survey.ForbiddenError
		invalid       survey.ValidationError
		orderConflict survey.DisplayOrderConflictError
		required      survey.RequiredAnswerError
		conflict      survey.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		LogNotFound(w, code, notFound.ID)
	case errors.As(err, &forbidden):
		LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, code, "%s", err)
	case errors.As(err, &invalid), errors.As(err, &required):
		LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "%s", err)
	case errors.As(err, &orderConflict), errors.As(err, &conflict):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", err)
	case errors.Is(err, survey.ErrFormInactive), errors.Is(err, survey.ErrFormExpired):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", err)
	default:
		LogInternalError(w, code, err)
	}
}
