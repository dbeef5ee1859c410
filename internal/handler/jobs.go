package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/paiban/roster/internal/jobqueue"
	"github.com/paiban/roster/internal/webhook"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster"
	"github.com/paiban/roster/pkg/rosterrors"
)

// SubmitResponse is returned immediately on job submission (§6 "Submit").
type SubmitResponse struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitHandler enqueues a solve request and returns its job ID without
// blocking for the solve to complete. An optional `webhookUrl` top-level
// field is stripped before the request is rehydrated for the worker.
func SubmitHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Queue == nil {
			respondError(w, rosterrors.New(rosterrors.CodeInternal, "async job queue is not configured on this instance"))
			return
		}

		raw, appErr := decodeRosterRequestRaw(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}

		webhookURL, _ := raw["webhookUrl"].(string)
		delete(raw, "webhookUrl")

		jobID := roster.NewJobID()
		input := raw
		if webhookURL != "" {
			input = map[string]interface{}{}
			for k, v := range raw {
				input[k] = v
			}
			input["_webhookUrl"] = webhookURL
		}

		if err := deps.Queue.Enqueue(r.Context(), jobID, input); err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInternal, "failed to enqueue job"))
			return
		}

		respondJSON(w, http.StatusAccepted, SubmitResponse{
			JobID:     jobID,
			Status:    string(jobqueue.StatusQueued),
			CreatedAt: time.Now().UTC(),
		})
	}
}

// StatusResponse reports a job's lifecycle position (§6 "Status").
type StatusResponse struct {
	JobID           string     `json:"jobId"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	ResultAvailable bool       `json:"resultAvailable"`
	ResultSizeBytes int        `json:"resultSizeBytes,omitempty"`
}

// StatusHandler reports a job's current status.
func StatusHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Queue == nil {
			respondError(w, rosterrors.New(rosterrors.CodeInternal, "async job queue is not configured on this instance"))
			return
		}
		jobID := mux.Vars(r)["jobId"]

		job, err := deps.Queue.Get(r.Context(), jobID)
		if err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInternal, "failed to load job"))
			return
		}
		if job == nil {
			respondError(w, rosterrors.JobNotFound(jobID))
			return
		}

		respondJSON(w, http.StatusOK, StatusResponse{
			JobID:           job.JobID,
			Status:          string(job.Status),
			CreatedAt:       job.CreatedAt,
			StartedAt:       job.StartedAt,
			CompletedAt:     job.CompletedAt,
			ErrorMessage:    job.ErrorMessage,
			ResultAvailable: job.Status == jobqueue.StatusCompleted,
			ResultSizeBytes: job.ResultSizeBytes,
		})
	}
}

// ResultHandler returns the completed output document, or the
// appropriate 404/410/425 per §6 "Result".
func ResultHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Queue == nil {
			respondError(w, rosterrors.New(rosterrors.CodeInternal, "async job queue is not configured on this instance"))
			return
		}
		jobID := mux.Vars(r)["jobId"]

		job, err := deps.Queue.Get(r.Context(), jobID)
		if err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInternal, "failed to load job"))
			return
		}
		if job == nil {
			respondError(w, rosterrors.JobNotFound(jobID))
			return
		}

		switch job.Status {
		case jobqueue.StatusExpired:
			respondError(w, rosterrors.JobExpired(jobID))
			return
		case jobqueue.StatusFailed:
			appErr := rosterrors.New(rosterrors.CodeSolverFailed, job.ErrorMessage)
			appErr.HTTPStatus = http.StatusGone
			respondError(w, appErr)
			return
		case jobqueue.StatusCompleted:
			// fall through
		default:
			respondError(w, rosterrors.JobNotReady(jobID))
			return
		}

		result, err := deps.Queue.GetResult(r.Context(), jobID)
		if err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInternal, "failed to load job result"))
			return
		}
		if result == nil {
			respondError(w, rosterrors.JobExpired(jobID))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(result)
	}
}

// RunWorker pulls jobs off the queue one at a time and drives them
// through roster.Solve, storing the result and firing the job's
// webhook (if any) on every terminal state. It blocks until ctx is
// cancelled, mirroring the teacher's one-solve-per-worker model (§5
// "process-per-worker pool").
func RunWorker(ctx context.Context, deps Deps) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobID, err := deps.Queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			logger.Error().Err(err).Msg("job dequeue failed")
			continue
		}
		if jobID == "" {
			continue
		}

		processJob(ctx, deps, jobID)
	}
}

func processJob(ctx context.Context, deps Deps, jobID string) {
	job, err := deps.Queue.Get(ctx, jobID)
	if err != nil || job == nil {
		logger.Error().Str("job_id", jobID).Msg("dequeued job has no metadata")
		return
	}

	webhookURL, _ := job.InputData["_webhookUrl"].(string)
	delete(job.InputData, "_webhookUrl")

	if err := deps.Queue.UpdateStatus(ctx, jobID, jobqueue.StatusInProgress, ""); err != nil {
		logger.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job in progress")
	}

	var req model.RosterRequest
	if err := remarshal(job.InputData, &req); err != nil {
		finishJob(ctx, deps, jobID, webhookURL, jobqueue.StatusFailed, nil, err.Error())
		return
	}

	outcome, err := roster.Solve(ctx, &req, deps.Config, job.InputData)
	if err != nil {
		finishJob(ctx, deps, jobID, webhookURL, jobqueue.StatusFailed, nil, err.Error())
		return
	}

	finishJob(ctx, deps, jobID, webhookURL, jobqueue.StatusCompleted, outcome.Output, "")
}

func finishJob(ctx context.Context, deps Deps, jobID, webhookURL string, status jobqueue.Status, result interface{}, errMsg string) {
	if result != nil {
		if err := deps.Queue.StoreResult(ctx, jobID, result); err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("failed to store job result")
		}
	}
	if err := deps.Queue.UpdateStatus(ctx, jobID, status, errMsg); err != nil {
		logger.Error().Err(err).Str("job_id", jobID).Msg("failed to update job status")
	}

	if deps.AuditDB != nil {
		if err := deps.AuditDB.RecordJobAudit(ctx, jobID, string(status), errMsg, time.Now().UTC()); err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("failed to record job audit")
		}
	}

	if deps.Notifier == nil || webhookURL == "" {
		return
	}
	event := webhook.Event{JobID: jobID, Status: string(status), OccurredAt: time.Now().UTC()}
	if errMsg != "" {
		event.Error = errMsg
	}
	if result != nil {
		if encoded, err := json.Marshal(result); err == nil {
			event.Result = encoded
		}
	}
	deps.Notifier.Notify(ctx, webhookURL, event)
}
