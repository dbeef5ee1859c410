package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paiban/roster/pkg/rosterrors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps any error to the engine's structured envelope,
// wrapping non-AppErrors as internal errors so every response carries
// a code/message pair.
func respondError(w http.ResponseWriter, err error) {
	var appErr *rosterrors.AppError
	if !errors.As(err, &appErr) {
		appErr = rosterrors.Wrap(err, rosterrors.CodeInternal, "internal error")
	}
	respondJSON(w, appErr.HTTPStatus, appErr)
}
