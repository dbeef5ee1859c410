// Package handler wires the solve pipeline to HTTP: a synchronous
// solve endpoint, the async submit/status/result trio backed by
// internal/jobqueue, the incremental and empty-slots solve variants,
// and a feasibility pre-check. Routing follows the teacher's
// internal/handler package (one file per concern, plain
// respondJSON/respondError helpers) generalized from its bare
// http.ServeMux to gorilla/mux for named path parameters.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/paiban/roster/internal/database"
	"github.com/paiban/roster/internal/jobqueue"
	"github.com/paiban/roster/internal/ratiocache"
	"github.com/paiban/roster/internal/webhook"
	"github.com/paiban/roster/pkg/roster"
)

// Deps bundles everything the handlers need. Queue, Cache, Notifier,
// and AuditDB are all optional — a nil Queue returns a 500 on the async
// submit/status/result endpoints (the synchronous, incremental,
// empty-slots and feasibility endpoints run without one), Cache is not
// read by the handlers (the solve pipeline uses Config.RatioCache), a
// nil Notifier skips webhook delivery, and a nil AuditDB skips the
// durable job-audit trail.
type Deps struct {
	Queue    *jobqueue.Queue
	Cache    *ratiocache.Cache
	Notifier *webhook.Notifier
	AuditDB  *database.DB
	Config   roster.Config
}

// NewRouter builds the full API router.
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/solve", SolveHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/solve/incremental", IncrementalSolveHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/solve/empty-slots", EmptySlotsSolveHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/feasibility", FeasibilityHandler(deps)).Methods(http.MethodPost)

	api.HandleFunc("/jobs", SubmitHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{jobId}", StatusHandler(deps)).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{jobId}/result", ResultHandler(deps)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "paiban-roster"})
}
