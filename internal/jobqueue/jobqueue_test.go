package jobqueue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewQueue(client, "test", time.Minute)
}

func TestQueue_EnqueueDequeueRoundTrip(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	input := map[string]interface{}{"planningHorizon": map[string]interface{}{"startDate": "2026-01-01"}}
	require.NoError(t, q.Enqueue(ctx, "job-1", input))

	n, err := q.Length(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	job, err := q.Get(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Equal(t, StatusQueued, job.Status)
	require.Equal(t, "2026-01-01", job.InputData["planningHorizon"].(map[string]interface{})["startDate"])

	jobID, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)

	n, err = q.Length(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestQueue_StatusAndResultLifecycle(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	require.NoError(t, q.Enqueue(ctx, "job-2", map[string]interface{}{}))
	require.NoError(t, q.UpdateStatus(ctx, "job-2", StatusInProgress, ""))

	job, err := q.Get(ctx, "job-2")
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, job.Status)
	require.NotNil(t, job.StartedAt)

	result := map[string]interface{}{"score": map[string]interface{}{"overall": 95.0}}
	require.NoError(t, q.StoreResult(ctx, "job-2", result))
	require.NoError(t, q.UpdateStatus(ctx, "job-2", StatusCompleted, ""))

	raw, err := q.GetResult(ctx, "job-2")
	require.NoError(t, err)
	require.Contains(t, string(raw), "95")

	job, err = q.Get(ctx, "job-2")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	require.Greater(t, job.ResultSizeBytes, 0)
}

func TestQueue_GetMissingJobReturnsNil(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	job, err := q.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	require.Nil(t, job)
}

func TestQueue_DeleteRemovesMetadataResultAndQueueEntry(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	require.NoError(t, q.Enqueue(ctx, "job-3", map[string]interface{}{}))
	require.NoError(t, q.StoreResult(ctx, "job-3", map[string]interface{}{"ok": true}))

	require.NoError(t, q.Delete(ctx, "job-3"))

	job, err := q.Get(ctx, "job-3")
	require.NoError(t, err)
	require.Nil(t, job)

	raw, err := q.GetResult(ctx, "job-3")
	require.NoError(t, err)
	require.Nil(t, raw)

	n, err := q.Length(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestQueue_StatsReportsOccupancyAndStatusBreakdown(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	require.NoError(t, q.Enqueue(ctx, "job-4", map[string]interface{}{}))
	require.NoError(t, q.Enqueue(ctx, "job-5", map[string]interface{}{}))
	require.NoError(t, q.UpdateStatus(ctx, "job-5", StatusFailed, "boom"))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalJobs)
	require.Equal(t, 2, stats.ActiveJobs)
	require.Equal(t, 1, stats.StatusBreakdown[StatusFailed])
}
