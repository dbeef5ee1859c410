package handler

import (
	"net/http"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster"
	"github.com/paiban/roster/pkg/rosterrors"
)

// SolveHandler runs the full pipeline synchronously and returns the
// output document in the same response (§6 "Synchronous solve
// endpoint").
func SolveHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawInput, appErr := decodeRosterRequestRaw(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}

		var req model.RosterRequest
		if err := remarshal(rawInput, &req); err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInputError, "malformed solve request"))
			return
		}

		outcome, err := roster.Solve(r.Context(), &req, deps.Config, rawInput)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, outcome.Output)
	}
}
