package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/GENO/internal/config"
	apperrors "github.com/copyleftdev/GENO/internal/errors"
	"github.com/copyleftdev/GENO/internal/logging"
	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
	"github.com/copyleftdev/GENO/internal/solver/genetic"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// JobState tracks one solve job. The map entry is guarded by the server's
// mutex; the handle itself is safe for concurrent use.
type JobState struct {
	ID          string
	Status      string // "running", "solved", "exhausted", "cancelled"
	StartTime   time.Time
	EndTime     *time.Time
	Handle      *genetic.Handle
	Result      *solver.Result
	LastUpdated time.Time
}

// Server implements the HTTP and JSON-RPC surface of the solver service.
// It manages solve jobs and provides endpoints to start, monitor, and
// cancel them.
type Server struct {
	cfg    *config.Config
	logger Logger

	jobs   map[string]*JobState
	jobsMu sync.RWMutex // Protects the jobs map
}

// NewServer creates a new server instance with the given config and logger
// The logger parameter accepts any type that implements the Logger interface
func NewServer(cfg *config.Config, logger Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		jobs:   make(map[string]*JobState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Get("/solve/{id}", s.handleStatus)
		r.Get("/solve/{id}/progress", s.handleProgress)
		r.Delete("/solve/{id}", s.handleCancel)
		r.Post("/evaluate", s.handleEvaluate)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// puzzleRequest is the wire form of a puzzle: clue segments as
// {color, length} pairs, palette as hex strings with index 0 the
// background.
type puzzleRequest struct {
	Rows     int                  `json:"rows"`
	Cols     int                  `json:"cols"`
	Palette  []string             `json:"palette"`
	RowClues [][]nonogram.Segment `json:"row_clues"`
	ColClues [][]nonogram.Segment `json:"col_clues"`
}

func (p puzzleRequest) build() (*nonogram.Puzzle, error) {
	return nonogram.NewPuzzle(p.Rows, p.Cols, nonogram.Palette(p.Palette), p.RowClues, p.ColClues)
}

// solveRequest starts a job. Config is optional and may be partial; fields
// it omits fall back to the server's defaults.
type solveRequest struct {
	Puzzle puzzleRequest   `json:"puzzle"`
	Config json.RawMessage `json:"config,omitempty"`
}

type evaluateRequest struct {
	Puzzle puzzleRequest `json:"puzzle"`
	Grid   [][]int       `json:"grid"`
}

// solveConfig builds the run configuration: the solver defaults, overridden
// by the server's configured defaults, overridden by whatever fields the
// request supplies. Decoding the raw request config onto the populated
// struct keeps omitted fields at their defaults, explicit zeros included.
func (s *Server) solveConfig(req *solveRequest) (solver.Config, error) {
	cfg := solver.DefaultConfig()
	if s.cfg != nil {
		if s.cfg.Solver.PopulationSize > 0 {
			cfg.PopulationSize = s.cfg.Solver.PopulationSize
		}
		if s.cfg.Solver.MaxGenerations > 0 {
			cfg.MaxGenerations = s.cfg.Solver.MaxGenerations
		}
		cfg.Workers = s.cfg.Solver.WorkerCount
		cfg.Budget = s.cfg.Solver.Budget
	}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return solver.Config{}, fmt.Errorf("invalid config: %v", err)
		}
	}
	return cfg, nil
}

// startJob validates the request, launches the solve and registers the job.
func (s *Server) startJob(req *solveRequest) (*JobState, error) {
	puzzle, err := req.Puzzle.build()
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid puzzle").
			WithComponent("server").WithOperation("start_job")
	}

	cfg, err := s.solveConfig(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid solver config").
			WithComponent("server").WithOperation("start_job")
	}

	handle, err := genetic.Start(context.Background(), puzzle, cfg)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid solver config").
			WithComponent("server").WithOperation("start_job")
	}

	id := fmt.Sprintf("job_%d", time.Now().UnixNano())
	now := time.Now()
	state := &JobState{
		ID:          id,
		Status:      "running",
		StartTime:   now,
		Handle:      handle,
		LastUpdated: now,
	}

	s.jobsMu.Lock()
	s.jobs[id] = state
	s.jobsMu.Unlock()

	go s.watchJob(state)

	s.logger.Info("Solve started", map[string]interface{}{
		"job_id": id,
		"rows":   puzzle.Rows(),
		"cols":   puzzle.Cols(),
	})
	return state, nil
}

// watchJob blocks on the run's terminal state, records the result, and
// schedules the job's expiry from the map.
func (s *Server) watchJob(state *JobState) {
	result := state.Handle.Result()

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	// A cancel request may have marked the job already.
	if state.EndTime == nil {
		state.Status = string(result.Status)
		now := time.Now()
		state.EndTime = &now
		state.LastUpdated = now
	}
	state.Result = result

	if s.cfg != nil && s.cfg.Solver.JobRetention > 0 {
		id := state.ID
		time.AfterFunc(s.cfg.Solver.JobRetention, func() { s.removeJob(id) })
	}

	observeResult(result)
	s.logger.Info("Solve finished", map[string]interface{}{
		"job_id":       state.ID,
		"status":       string(result.Status),
		"best_fitness": result.BestFitness,
		"generations":  result.Generations,
	})
}

// removeJob drops a terminal job from the map once its retention elapses.
func (s *Server) removeJob(id string) {
	s.jobsMu.Lock()
	delete(s.jobs, id)
	s.jobsMu.Unlock()
}

// job looks up a registered job.
func (s *Server) job(id string) (*JobState, bool) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	state, ok := s.jobs[id]
	return state, ok
}

var errJobNotFound = errors.New("job not found")

// statusResponse builds the wire view of a job.
func (s *Server) statusResponse(id string) (map[string]interface{}, error) {
	state, ok := s.job(id)
	if !ok {
		return nil, errJobNotFound
	}

	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	// Entry 0 of the convergence log is the seeded population.
	generations := state.Handle.Stats().Len()
	if generations > 0 {
		generations--
	}
	response := map[string]interface{}{
		"job_id":      state.ID,
		"status":      state.Status,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
		"generations": generations,
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Result != nil {
		response["best_fitness"] = state.Result.BestFitness
		response["best_grid"] = state.Result.BestGrid.Cells()
	}
	return response, nil
}

// progressResponse returns convergence entries from index `from` on, plus
// the next offset to poll with.
func (s *Server) progressResponse(id string, from int) (map[string]interface{}, error) {
	state, ok := s.job(id)
	if !ok {
		return nil, errJobNotFound
	}

	entries := state.Handle.Stats().Since(from)
	if entries == nil {
		entries = []solver.GenerationStats{}
	}
	return map[string]interface{}{
		"job_id":  id,
		"from":    from,
		"next":    from + len(entries),
		"history": entries,
	}, nil
}

// cancelJob requests a cooperative stop of a running job.
func (s *Server) cancelJob(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	state, ok := s.jobs[id]
	if !ok {
		return errJobNotFound
	}

	switch state.Status {
	case "solved", "exhausted", "cancelled":
		return fmt.Errorf("cannot cancel job with status: %s", state.Status)
	}

	state.Handle.Cancel()
	state.Status = "cancelled"
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Solve cancelled", map[string]interface{}{
		"job_id": id,
	})
	return nil
}

// evaluate scores a candidate grid against a puzzle without starting a job.
func (s *Server) evaluate(req *evaluateRequest) (map[string]interface{}, error) {
	puzzle, err := req.Puzzle.build()
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid puzzle").
			WithComponent("server").WithOperation("evaluate")
	}
	grid, err := nonogram.GridFromCells(req.Grid)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid grid").
			WithComponent("server").WithOperation("evaluate")
	}
	if grid.Rows() != puzzle.Rows() || grid.Cols() != puzzle.Cols() {
		return nil, fmt.Errorf("grid is %dx%d, puzzle is %dx%d",
			grid.Rows(), grid.Cols(), puzzle.Rows(), puzzle.Cols())
	}

	fitness := solver.Score(grid, puzzle)
	return map[string]interface{}{
		"fitness": fitness,
		"solved":  fitness == 0,
	}, nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	// Route to appropriate handler
	var result interface{}
	var err error

	switch request.Method {
	case "solver.start":
		result, err = s.rpcStart(request.Params)
	case "solver.status":
		result, err = s.rpcStatus(request.Params)
	case "solver.progress":
		result, err = s.rpcProgress(request.Params)
	case "solver.cancel":
		result, err = s.rpcCancel(request.Params)
	case "solver.evaluate":
		result, err = s.rpcEvaluate(request.Params)
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := -32000
		if errors.Is(err, errJobNotFound) {
			code = -32001
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	// Send successful response
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// rpcStart handles the solver.start JSON-RPC method.
// Expected params: {"puzzle": {...}, "config": {...}}
// Returns: {"job_id": "job_123", "status": "running"}
func (s *Server) rpcStart(params json.RawMessage) (interface{}, error) {
	var req solveRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	state, err := s.startJob(&req)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"job_id": state.ID,
		"status": state.Status,
	}, nil
}

// rpcStatus handles the solver.status JSON-RPC method.
// Expected params: {"job_id": "job_123"}
func (s *Server) rpcStatus(params json.RawMessage) (interface{}, error) {
	id, err := decodeJobID(params)
	if err != nil {
		return nil, err
	}
	return s.statusResponse(id)
}

// rpcProgress handles the solver.progress JSON-RPC method.
// Expected params: {"job_id": "job_123", "from": 0}
func (s *Server) rpcProgress(params json.RawMessage) (interface{}, error) {
	var req struct {
		JobID string `json:"job_id"`
		From  int    `json:"from"`
	}
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	if req.JobID == "" {
		return nil, fmt.Errorf("job_id is required")
	}
	if req.From < 0 {
		return nil, fmt.Errorf("from must not be negative")
	}
	return s.progressResponse(req.JobID, req.From)
}

// rpcCancel handles the solver.cancel JSON-RPC method.
// Expected params: {"job_id": "job_123"}
func (s *Server) rpcCancel(params json.RawMessage) (interface{}, error) {
	id, err := decodeJobID(params)
	if err != nil {
		return nil, err
	}
	if err := s.cancelJob(id); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"job_id": id,
		"status": "cancelled",
	}, nil
}

// rpcEvaluate handles the solver.evaluate JSON-RPC method.
// Expected params: {"puzzle": {...}, "grid": [[...]]}
func (s *Server) rpcEvaluate(params json.RawMessage) (interface{}, error) {
	var req evaluateRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return s.evaluate(&req)
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("missing required parameters")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid parameter format: %v", err)
	}
	return nil
}

func decodeJobID(params json.RawMessage) (string, error) {
	var req struct {
		JobID string `json:"job_id"`
	}
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if req.JobID == "" {
		return "", fmt.Errorf("job_id is required")
	}
	return req.JobID, nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Close cleans up resources
func (s *Server) Close() error {
	// Cancel all running jobs
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		job.Handle.Cancel()
	}
	return nil
}

// handleSolve handles POST /api/v1/solve for starting a new solve job
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	state, err := s.startJob(&req)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": state.ID,
		"status": state.Status,
	})
}

// handleStatus handles GET /api/v1/solve/{id} for checking job status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.statusResponse(id)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleProgress handles GET /api/v1/solve/{id}/progress?from=N for
// incremental convergence polling
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	from := 0
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": "from must be a non-negative integer",
			})
			return
		}
		from = parsed
	}

	result, err := s.progressResponse(id, from)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleCancel handles DELETE /api/v1/solve/{id} for cancelling a job
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.cancelJob(id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errJobNotFound) {
			status = http.StatusNotFound
		}
		s.respondJSON(w, status, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "cancellation requested",
	})
}

// handleEvaluate handles POST /api/v1/evaluate for one-shot grid scoring
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	result, err := s.evaluate(&req)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
