package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stats summarizes queue occupancy and job status breakdown, scanned on
// demand rather than maintained incrementally.
type Stats struct {
	TotalJobs       int64
	ActiveJobs      int
	QueueLength     int64
	ResultsCached   int
	StatusBreakdown map[Status]int
}

// Stats scans all job keys under the queue's prefix and reports current
// occupancy. Intended for operator dashboards, not the hot path.
func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	queueLen, err := q.Length(ctx)
	if err != nil {
		return Stats{}, err
	}

	total, err := q.client.Get(ctx, q.statsKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Stats{}, fmt.Errorf("read total jobs counter: %w", err)
	}

	stats := Stats{TotalJobs: total, QueueLength: queueLen, StatusBreakdown: map[Status]int{}}

	pattern := fmt.Sprintf("%s:job:*", q.prefix)
	var cursor uint64
	for {
		keys, next, err := q.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("scan job keys: %w", err)
		}
		for _, key := range keys {
			if key == q.queueKey() {
				continue
			}
			stats.ActiveJobs++

			status, err := q.client.HGet(ctx, key, "status").Result()
			if err == nil && status != "" {
				stats.StatusBreakdown[Status(status)]++
			}

			jobID := key[len(q.prefix)+len(":job:"):]
			exists, err := q.client.Exists(ctx, q.resultKey(jobID)).Result()
			if err == nil && exists > 0 {
				stats.ResultsCached++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return stats, nil
}

// CleanupExpired marks completed/failed jobs older than ttl as expired.
// Redis already reclaims the result STRING via its own TTL; this only
// updates the lingering metadata HASH so status queries stop reporting
// a result that no longer exists.
func (q *Queue) CleanupExpired(ctx context.Context, ttl time.Duration) (int, error) {
	pattern := fmt.Sprintf("%s:job:*", q.prefix)
	var cursor uint64
	expired := 0
	now := time.Now().UTC()

	for {
		keys, next, err := q.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return expired, fmt.Errorf("scan job keys: %w", err)
		}
		for _, key := range keys {
			if key == q.queueKey() {
				continue
			}
			data, err := q.client.HGetAll(ctx, key).Result()
			if err != nil || len(data) == 0 {
				continue
			}
			status := Status(data["status"])
			if status != StatusCompleted && status != StatusFailed {
				continue
			}
			completedAt, err := time.Parse(time.RFC3339Nano, data["completed_at"])
			if err != nil {
				continue
			}
			if now.Sub(completedAt) > ttl {
				q.client.HSet(ctx, key, "status", string(StatusExpired))
				expired++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return expired, nil
}
