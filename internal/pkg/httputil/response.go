package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// JSON writes a JSON response with the given status code. Content-Type is
// set automatically. Encoding failures are logged on the request logger.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("json encode failed")
	}
}

// Empty writes status with no body.
func Empty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// OK writes a 200 response with no body.
func OK(w http.ResponseWriter) { Empty(w, http.StatusOK) }

// BadRequest writes a 400 response with no body.
func BadRequest(w http.ResponseWriter) { Empty(w, http.StatusBadRequest) }

// InternalError logs err on the request logger and writes a 500 response
// with no body. Internals never reach the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("internal error")
	Empty(w, http.StatusInternalServerError)
}
