package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversEventBody(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(DefaultConfig())
	n.Notify(context.Background(), srv.URL, Event{JobID: "job-1", Status: "completed", OccurredAt: time.Now()})

	require.Equal(t, "job-1", received.JobID)
	require.Equal(t, "completed", received.Status)
}

func TestNotifier_SwallowsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(DefaultConfig())
	require.NotPanics(t, func() {
		n.Notify(context.Background(), srv.URL, Event{JobID: "job-2", Status: "failed"})
	})
}

func TestNotifier_EmptyURLIsNoOp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	n := New(DefaultConfig())
	n.Notify(context.Background(), "", Event{JobID: "job-3", Status: "completed"})
	require.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestNotifier_TripsBreakerAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.FailureThreshold = 2
	n := New(cfg)

	for i := 0; i < 5; i++ {
		n.Notify(context.Background(), srv.URL, Event{JobID: "job-4", Status: "failed"})
	}

	// Once open, the breaker rejects calls without reaching the server,
	// so the server should have seen fewer than 5 requests.
	require.Less(t, int(atomic.LoadInt32(&calls)), 5)
}
