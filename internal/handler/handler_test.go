package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/paiban/roster/internal/jobqueue"
	"github.com/paiban/roster/pkg/roster"
)

func testSolveBody() map[string]interface{} {
	return map[string]interface{}{
		"PlanningHorizon": map[string]interface{}{"StartDate": "2026-01-05", "EndDate": "2026-01-06"},
		"Employees": []map[string]interface{}{
			{"EmployeeID": "E1", "Scheme": "A", "WorkPattern": []string{"D", "O"}},
			{"EmployeeID": "E2", "Scheme": "A", "WorkPattern": []string{"D", "O"}},
		},
		"DemandItems": []map[string]interface{}{
			{
				"DemandID":   "D1",
				"LocationID": "L1",
				"OUID":       "OU1",
				"Shifts": []map[string]interface{}{
					{"ShiftDetails": []map[string]interface{}{{"ShiftCode": "D", "Start": "08:00", "End": "16:00"}}},
				},
				"Requirements": []map[string]interface{}{
					{
						"RequirementID":    "R1",
						"Headcount":        1,
						"WorkPattern":      []string{"D", "O"},
						"PatternStartDate": "2026-01-05",
					},
				},
			},
		},
	}
}

func TestSolveHandler_ReturnsOutputDocument(t *testing.T) {
	deps := Deps{Config: roster.DefaultConfig()}
	router := NewRouter(deps)

	body, err := json.Marshal(testSolveBody())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Contains(t, out, "Assignments")
}

func TestFeasibilityHandler_ReportsLowerBoundForDemandBasedRequirement(t *testing.T) {
	deps := Deps{Config: roster.DefaultConfig()}
	router := NewRouter(deps)

	// testSolveBody's requirement already defaults to demand-based (no
	// RosteringBasis set), which is the path ICPMP runs on — it stands
	// down only in outcomeBased mode, where offsets instead come from
	// the OU offset table.
	encoded, err := json.Marshal(testSolveBody())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feasibility", bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out FeasibilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Contains(t, out.LowerBoundPerReq, "R1")
}

func TestFeasibilityHandler_SkipsOutcomeBasedRequirement(t *testing.T) {
	deps := Deps{Config: roster.DefaultConfig()}
	router := NewRouter(deps)

	body := testSolveBody()
	reqList := body["DemandItems"].([]map[string]interface{})[0]["Requirements"].([]map[string]interface{})
	reqList[0]["RosteringBasis"] = "outcomeBased"
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feasibility", bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out FeasibilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotContains(t, out.LowerBoundPerReq, "R1", "outcome-based requirements source offsets from the OU offset table, not ICPMP")
}

func TestSolveHandler_RejectsInvalidInput(t *testing.T) {
	deps := Deps{Config: roster.DefaultConfig()}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func newTestQueue(t *testing.T) *jobqueue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return jobqueue.NewQueue(client, "test", time.Hour)
}

func TestJobLifecycle_SubmitStatusResult(t *testing.T) {
	queue := newTestQueue(t)
	deps := Deps{Config: roster.DefaultConfig(), Queue: queue}
	router := NewRouter(deps)

	body, err := json.Marshal(testSolveBody())
	require.NoError(t, err)

	submitReq := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	submitRec := httptest.NewRecorder()
	router.ServeHTTP(submitRec, submitReq)
	require.Equal(t, http.StatusAccepted, submitRec.Code)

	var submitResp SubmitResponse
	require.NoError(t, json.Unmarshal(submitRec.Body.Bytes(), &submitResp))
	require.NotEmpty(t, submitResp.JobID)

	statusReq := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+submitResp.JobID, nil)
	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, statusReq)
	require.Equal(t, http.StatusOK, statusRec.Code)
	var statusResp StatusResponse
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &statusResp))
	require.Equal(t, string(jobqueue.StatusQueued), statusResp.Status)

	resultReqBeforeSolve := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+submitResp.JobID+"/result", nil)
	resultRecBeforeSolve := httptest.NewRecorder()
	router.ServeHTTP(resultRecBeforeSolve, resultReqBeforeSolve)
	require.Equal(t, http.StatusTooEarly, resultRecBeforeSolve.Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	processJob(ctx, deps, submitResp.JobID)

	resultReq := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+submitResp.JobID+"/result", nil)
	resultRec := httptest.NewRecorder()
	router.ServeHTTP(resultRec, resultReq)
	require.Equal(t, http.StatusOK, resultRec.Code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(resultRec.Body.Bytes(), &out))
	require.Contains(t, out, "Assignments")
}

func TestStatusHandler_UnknownJobReturnsNotFound(t *testing.T) {
	queue := newTestQueue(t)
	deps := Deps{Config: roster.DefaultConfig(), Queue: queue}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
