package routes

import (
	"errors"
	"net/http"
	"time"

	"dlh/dlh/controllers"
	"dlh/dlh/middlewares"
	"dlh/dlh/utils/jsonutils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// crudTimeout bounds JSON handlers only; streaming routes never get a timeout.
const crudTimeout = 30 * time.Second

var errBadID = errors.New("bad id")

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, err)
			return
		}
		jsonutils.Write(w, status, res)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadID) {
		jsonutils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	status, msg := controllers.ErrorResponse(err)
	jsonutils.Error(w, status, msg)
}

// decode wraps body decoding errors as a client error.
func decode(r *http.Request, v any) error {
	if err := jsonutils.Decode(nil, r, v); err != nil {
		return &controllers.ValidationError{Msg: err.Error()}
	}
	return nil
}

func currentUser(r *http.Request) uuid.UUID {
	id, _ := middlewares.UserID(r.Context())
	return id
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errBadID
	}
	return id, nil
}
