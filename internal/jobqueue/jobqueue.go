// Package jobqueue implements a Redis-backed asynchronous job queue for
// the solve pipeline: a FIFO queue of pending runs, a metadata hash per
// job, and a TTL-bounded result string per job. Multiple API instances
// can share one Redis and survive restarts without losing queued work.
//
// Redis keys (prefix configurable, default "paiban"):
//   - {prefix}:job:queue      LIST   - pending job IDs (LPUSH/BRPOP)
//   - {prefix}:job:{id}       HASH   - job metadata
//   - {prefix}:result:{id}    STRING - job result JSON, TTL-bounded
//   - {prefix}:stats:total    STRING - lifetime job counter
package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paiban/roster/pkg/logger"
)

// Status is a job's position in its lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusValidating Status = "validating"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

// Job carries a queued run's metadata. InputData holds the raw solve
// request so a worker can rehydrate it without a second round trip to
// whatever service enqueued the job.
type Job struct {
	JobID          string
	Status         Status
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	InputData      map[string]interface{}
	ErrorMessage   string
	ResultSizeBytes int
}

// Queue is a Redis-backed job queue.
type Queue struct {
	client        *redis.Client
	prefix        string
	resultTTL     time.Duration
}

// NewQueue wires a Queue against an existing Redis client. resultTTL
// bounds how long a completed job's result stays fetchable before
// Redis reclaims it; metadata survives independently of the result.
func NewQueue(client *redis.Client, prefix string, resultTTL time.Duration) *Queue {
	if prefix == "" {
		prefix = "paiban"
	}
	if resultTTL <= 0 {
		resultTTL = time.Hour
	}
	return &Queue{client: client, prefix: prefix, resultTTL: resultTTL}
}

func (q *Queue) queueKey() string            { return fmt.Sprintf("%s:job:queue", q.prefix) }
func (q *Queue) jobKey(id string) string     { return fmt.Sprintf("%s:job:%s", q.prefix, id) }
func (q *Queue) resultKey(id string) string  { return fmt.Sprintf("%s:result:%s", q.prefix, id) }
func (q *Queue) statsKey() string            { return fmt.Sprintf("%s:stats:total", q.prefix) }

// Enqueue stores job metadata and pushes jobID onto the pending queue.
func (q *Queue) Enqueue(ctx context.Context, jobID string, input map[string]interface{}) error {
	job := Job{JobID: jobID, Status: StatusQueued, CreatedAt: time.Now().UTC(), InputData: input}

	fields, err := q.toHash(job)
	if err != nil {
		return fmt.Errorf("encode job metadata: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.jobKey(jobID), fields)
	pipe.LPush(ctx, q.queueKey(), jobID)
	pipe.Incr(ctx, q.statsKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue job %s: %w", jobID, err)
	}

	logger.Info().Str("job_id", jobID).Msg("job enqueued")
	return nil
}

// Dequeue blocks up to timeout for a job ID, returning ("", nil) on a
// timed-out empty queue. timeout<=0 blocks until a pop pattern BRPOP
// treats as indefinite, as in the Redis client convention.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dequeue job: %w", err)
	}
	// BRPop returns [key, value].
	return result[1], nil
}

// Get retrieves a job's metadata, or (nil, nil) if it does not exist.
func (q *Queue) Get(ctx context.Context, jobID string) (*Job, error) {
	data, err := q.client.HGetAll(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	job, err := q.fromHash(jobID, data)
	if err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return job, nil
}

// UpdateStatus transitions a job's status, stamping started_at/completed_at
// as appropriate. errMsg is recorded only when non-empty.
func (q *Queue) UpdateStatus(ctx context.Context, jobID string, status Status, errMsg string) error {
	key := q.jobKey(jobID)
	exists, err := q.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check job %s: %w", jobID, err)
	}
	if exists == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}

	fields := map[string]interface{}{"status": string(status)}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	switch status {
	case StatusInProgress:
		fields["started_at"] = now
	case StatusCompleted, StatusFailed:
		fields["completed_at"] = now
	}
	if errMsg != "" {
		fields["error_message"] = errMsg
	}

	if err := q.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	logger.Info().Str("job_id", jobID).Str("status", string(status)).Msg("job status updated")
	return nil
}

// StoreResult writes the job's result JSON with the queue's TTL and
// records the serialized size back onto the job's metadata hash.
func (q *Queue) StoreResult(ctx context.Context, jobID string, result interface{}) error {
	key := q.jobKey(jobID)
	exists, err := q.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check job %s: %w", jobID, err)
	}
	if exists == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result for job %s: %w", jobID, err)
	}

	if err := q.client.Set(ctx, q.resultKey(jobID), encoded, q.resultTTL).Err(); err != nil {
		return fmt.Errorf("store result for job %s: %w", jobID, err)
	}
	if err := q.client.HSet(ctx, key, "result_size_bytes", len(encoded)).Err(); err != nil {
		return fmt.Errorf("record result size for job %s: %w", jobID, err)
	}

	logger.Info().Str("job_id", jobID).Int("bytes", len(encoded)).Msg("job result stored")
	return nil
}

// GetResult returns the job's stored result, or (nil, nil) if absent or
// expired.
func (q *Queue) GetResult(ctx context.Context, jobID string) (json.RawMessage, error) {
	data, err := q.client.Get(ctx, q.resultKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result for job %s: %w", jobID, err)
	}
	return json.RawMessage(data), nil
}

// Delete removes a job's metadata, result, and any still-pending queue
// entry.
func (q *Queue) Delete(ctx context.Context, jobID string) error {
	pipe := q.client.TxPipeline()
	pipe.Del(ctx, q.jobKey(jobID))
	pipe.Del(ctx, q.resultKey(jobID))
	pipe.LRem(ctx, q.queueKey(), 0, jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete job %s: %w", jobID, err)
	}
	return nil
}

// Length reports the number of jobs still waiting to be picked up.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

func (q *Queue) toHash(job Job) (map[string]interface{}, error) {
	input, err := json.Marshal(job.InputData)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"job_id":     job.JobID,
		"status":     string(job.Status),
		"created_at": job.CreatedAt.Format(time.RFC3339Nano),
		"input_data": string(input),
	}
	return fields, nil
}

func (q *Queue) fromHash(jobID string, data map[string]string) (*Job, error) {
	job := &Job{JobID: jobID, Status: Status(data["status"])}

	if v := data["created_at"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		job.CreatedAt = t
	}
	if v := data["started_at"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		job.StartedAt = &t
	}
	if v := data["completed_at"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		job.CompletedAt = &t
	}
	if v := data["input_data"]; v != "" {
		if err := json.Unmarshal([]byte(v), &job.InputData); err != nil {
			return nil, fmt.Errorf("parse input_data: %w", err)
		}
	}
	job.ErrorMessage = data["error_message"]
	if v := data["result_size_bytes"]; v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			job.ResultSizeBytes = n
		}
	}
	return job, nil
}
