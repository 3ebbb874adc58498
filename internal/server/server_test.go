package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/GENO/internal/config"
	"github.com/copyleftdev/GENO/internal/logging"
	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
)

// testConfig creates a test configuration with default values
func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{
		Environment: "test",
	}

	// Set up HTTP config
	cfg.HTTP.Port = 8080
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.IdleTimeout = 120 * time.Second
	cfg.HTTP.ShutdownTimeout = 30 * time.Second

	// Set up logging
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"
	cfg.Logging.Output = "stdout"

	// Set up solver defaults
	cfg.Solver.WorkerCount = 2
	cfg.Solver.PopulationSize = 100
	cfg.Solver.MaxGenerations = 500

	return cfg
}

// testLogger creates a test logger
func testLogger(t *testing.T) *logging.Logger {
	logger, err := logging.NewLogger(&logging.Config{
		Level:  "debug",
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func testRouter(t *testing.T) (*Server, chi.Router) {
	srv := NewServer(testConfig(t), testLogger(t))
	t.Cleanup(func() { srv.Close() })
	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return srv, r
}

// treeSolveRequest builds a solve request for the 5x5 tree puzzle with a
// deterministic, quickly converging configuration.
func treeSolveRequest(t *testing.T) map[string]interface{} {
	puzzle := nonogram.TreePuzzle()
	cfg := solver.DefaultConfig()
	cfg.PopulationSize = 100
	cfg.RandomSeed = 23
	cfg.Workers = 2

	rowClues := make([][]nonogram.Segment, puzzle.Rows())
	for r := 0; r < puzzle.Rows(); r++ {
		rowClues[r] = puzzle.RowClues(r)
	}
	colClues := make([][]nonogram.Segment, puzzle.Cols())
	for c := 0; c < puzzle.Cols(); c++ {
		colClues[c] = puzzle.ColClues(c)
	}

	return map[string]interface{}{
		"puzzle": map[string]interface{}{
			"rows":      puzzle.Rows(),
			"cols":      puzzle.Cols(),
			"palette":   []string(puzzle.Palette()),
			"row_clues": rowClues,
			"col_clues": colClues,
		},
		"config": cfg,
	}
}

func postJSON(t *testing.T, r chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func getJSON(t *testing.T, r chi.Router, path string, out interface{}) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if out != nil {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(out))
	}
	return rr
}

func TestNewServer(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	assert.NotNil(t, srv, "Server should be created")
}

func TestRegisterRoutes(t *testing.T) {
	_, r := testRouter(t)

	tests := []struct {
		method      string
		path        string
		shouldExist bool
	}{
		{"POST", "/api/v1/solve", true},
		{"GET", "/api/v1/solve/123", true},
		{"GET", "/api/v1/solve/123/progress", true},
		{"DELETE", "/api/v1/solve/123", true},
		{"POST", "/api/v1/evaluate", true},
		{"POST", "/rpc", true},
		{"GET", "/healthz", false}, // Registered by cmd/server, not here
		{"GET", "/nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			// A registered handler may itself answer 404 (unknown job id),
			// but it does so with a JSON error envelope; the router's 404
			// is plain text.
			if tt.shouldExist && rr.Code == http.StatusNotFound {
				var body map[string]interface{}
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil || body["error"] == nil {
					t.Errorf("Route %s %s should exist but returned the router's 404", tt.method, tt.path)
				}
			}
		})
	}
}

func TestSolveLifecycle(t *testing.T) {
	_, r := testRouter(t)

	rr := postJSON(t, r, "/api/v1/solve", treeSolveRequest(t))
	require.Equal(t, http.StatusAccepted, rr.Code, "body: %s", rr.Body.String())

	var started struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&started))
	require.NotEmpty(t, started.JobID)
	assert.Equal(t, "running", started.Status)

	// Poll until the run reaches a terminal state.
	var status struct {
		Status      string  `json:"status"`
		BestFitness *int    `json:"best_fitness"`
		BestGrid    [][]int `json:"best_grid"`
	}
	deadline := time.Now().Add(30 * time.Second)
	for {
		rr = getJSON(t, r, "/api/v1/solve/"+started.JobID, &status)
		require.Equal(t, http.StatusOK, rr.Code)
		if status.Status != "running" {
			break
		}
		require.True(t, time.Now().Before(deadline), "solve did not finish in time")
		time.Sleep(20 * time.Millisecond)
	}

	require.Equal(t, "solved", status.Status)
	require.NotNil(t, status.BestFitness)
	assert.Equal(t, 0, *status.BestFitness)
	require.Len(t, status.BestGrid, 5)

	// Progress returns the convergence log incrementally.
	var progress struct {
		From    int                      `json:"from"`
		Next    int                      `json:"next"`
		History []solver.GenerationStats `json:"history"`
	}
	rr = getJSON(t, r, "/api/v1/solve/"+started.JobID+"/progress", &progress)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, progress.History)
	assert.Equal(t, 0, progress.From)
	assert.Equal(t, len(progress.History), progress.Next)
	assert.Equal(t, 0, progress.History[len(progress.History)-1].Best)

	// Polling from the end yields nothing new.
	rr = getJSON(t, r, "/api/v1/solve/"+started.JobID+"/progress?from="+strconv.Itoa(progress.Next), &progress)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, progress.History)
}

func TestSolveRejectsInvalidPuzzle(t *testing.T) {
	_, r := testRouter(t)

	body := treeSolveRequest(t)
	puzzle := body["puzzle"].(map[string]interface{})
	puzzle["rows"] = 0

	rr := postJSON(t, r, "/api/v1/solve", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp, "error")
}

func TestSolveAcceptsPartialConfig(t *testing.T) {
	srv, r := testRouter(t)

	// Unit-level: supplied fields override, omitted fields keep the
	// server's defaults.
	cfg, err := srv.solveConfig(&solveRequest{
		Config: json.RawMessage(`{"mutation_rate": 0.1, "elite_count": 0}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.MutationRate)
	assert.Equal(t, 0, cfg.EliteCount)
	assert.Equal(t, 100, cfg.PopulationSize, "server default should fill the omitted field")
	assert.Equal(t, 500, cfg.MaxGenerations)

	// End to end: a request carrying only one config field must start.
	body := treeSolveRequest(t)
	body["config"] = map[string]interface{}{"mutation_rate": 0.1}
	rr := postJSON(t, r, "/api/v1/solve", body)
	assert.Equal(t, http.StatusAccepted, rr.Code, "body: %s", rr.Body.String())
}

func TestSolveRejectsMalformedConfig(t *testing.T) {
	_, r := testRouter(t)

	body := treeSolveRequest(t)
	body["config"] = map[string]interface{}{"population_size": "lots"}
	rr := postJSON(t, r, "/api/v1/solve", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSolveRejectsInvalidConfig(t *testing.T) {
	_, r := testRouter(t)

	cfg := solver.DefaultConfig()
	cfg.PopulationSize = -1
	body := treeSolveRequest(t)
	body["config"] = cfg

	rr := postJSON(t, r, "/api/v1/solve", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatusUnknownJob(t *testing.T) {
	_, r := testRouter(t)

	rr := getJSON(t, r, "/api/v1/solve/job_missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCancelJob(t *testing.T) {
	_, r := testRouter(t)

	// A puzzle with no solution keeps the run busy until cancelled.
	body := treeSolveRequest(t)
	cfg := solver.DefaultConfig()
	cfg.RandomSeed = 7
	cfg.Workers = 1
	cfg.MaxGenerations = 1 << 30
	puzzle := body["puzzle"].(map[string]interface{})
	puzzle["row_clues"] = [][]nonogram.Segment{
		{{Color: 1, Length: 1}}, {}, {}, {}, {},
	}
	puzzle["col_clues"] = [][]nonogram.Segment{
		{}, {}, {}, {}, {},
	}
	body["config"] = cfg

	rr := postJSON(t, r, "/api/v1/solve", body)
	require.Equal(t, http.StatusAccepted, rr.Code, "body: %s", rr.Body.String())

	var started struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&started))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/solve/"+started.JobID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// A second cancel is rejected: the job is already terminal.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/solve/"+started.JobID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var status struct {
		Status string `json:"status"`
	}
	getJSON(t, r, "/api/v1/solve/"+started.JobID, &status)
	assert.Equal(t, "cancelled", status.Status)
}

func TestFinishedJobsExpireAfterRetention(t *testing.T) {
	cfg := testConfig(t)
	cfg.Solver.JobRetention = 20 * time.Millisecond
	srv := NewServer(cfg, testLogger(t))
	t.Cleanup(func() { srv.Close() })
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	rr := postJSON(t, r, "/api/v1/solve", treeSolveRequest(t))
	require.Equal(t, http.StatusAccepted, rr.Code, "body: %s", rr.Body.String())

	var started struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&started))

	// Once the run finishes, the job must disappear after the retention
	// window.
	deadline := time.Now().Add(30 * time.Second)
	for {
		rr = getJSON(t, r, "/api/v1/solve/"+started.JobID, nil)
		if rr.Code == http.StatusNotFound {
			break
		}
		require.True(t, time.Now().Before(deadline), "job was never removed")
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	_, r := testRouter(t)

	body := treeSolveRequest(t)
	delete(body, "config")
	body["grid"] = nonogram.TreeGrid().Cells()

	rr := postJSON(t, r, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

	var resp struct {
		Fitness int  `json:"fitness"`
		Solved  bool `json:"solved"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Fitness)
	assert.True(t, resp.Solved)
}

func TestEvaluateRejectsDimensionMismatch(t *testing.T) {
	_, r := testRouter(t)

	body := treeSolveRequest(t)
	delete(body, "config")
	body["grid"] = [][]int{{0, 0}, {0, 0}}

	rr := postJSON(t, r, "/api/v1/evaluate", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJSONRPCLifecycle(t *testing.T) {
	_, r := testRouter(t)

	call := func(method string, params interface{}) (map[string]interface{}, map[string]interface{}) {
		rr := postJSON(t, r, "/rpc", map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  method,
			"params":  params,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Result map[string]interface{} `json:"result"`
			Error  map[string]interface{} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		return resp.Result, resp.Error
	}

	result, rpcErr := call("solver.start", treeSolveRequest(t))
	require.Nil(t, rpcErr)
	jobID, _ := result["job_id"].(string)
	require.NotEmpty(t, jobID)

	deadline := time.Now().Add(30 * time.Second)
	for {
		result, rpcErr = call("solver.status", map[string]interface{}{"job_id": jobID})
		require.Nil(t, rpcErr)
		if result["status"] != "running" {
			break
		}
		require.True(t, time.Now().Before(deadline), "solve did not finish in time")
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, "solved", result["status"])

	result, rpcErr = call("solver.progress", map[string]interface{}{"job_id": jobID, "from": 0})
	require.Nil(t, rpcErr)
	history, _ := result["history"].([]interface{})
	assert.NotEmpty(t, history)

	evalParams := treeSolveRequest(t)
	delete(evalParams, "config")
	evalParams["grid"] = nonogram.TreeGrid().Cells()
	result, rpcErr = call("solver.evaluate", evalParams)
	require.Nil(t, rpcErr)
	assert.Equal(t, float64(0), result["fitness"])

	_, rpcErr = call("solver.status", map[string]interface{}{"job_id": "job_missing"})
	require.NotNil(t, rpcErr)
	assert.Equal(t, float64(-32001), rpcErr["code"])
}

func TestJSONRPCRejectsBadEnvelope(t *testing.T) {
	_, r := testRouter(t)

	rr := postJSON(t, r, "/rpc", map[string]interface{}{
		"jsonrpc": "1.0",
		"id":      1,
		"method":  "solver.start",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	errObj, ok := resp["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(-32600), errObj["code"])
}

func TestJSONRPCUnknownMethod(t *testing.T) {
	_, r := testRouter(t)

	rr := postJSON(t, r, "/rpc", map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "solver.unknown",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	errObj, ok := resp["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(-32601), errObj["code"])
}

func TestClose(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	err := srv.Close()
	assert.NoError(t, err, "Close should not return an error")
}
