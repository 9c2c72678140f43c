package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/seqopt/seqopt"
	"github.com/seqopt/seqopt/internal/config"
	"github.com/seqopt/seqopt/internal/logging"
	"github.com/seqopt/seqopt/space"
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

// Job tracks one optimization run from submission to a terminal state.
// Access is guarded by the server's job mutex.
type Job struct {
	ID          string
	Status      string // "pending", "running", "completed", "failed", "cancelled"
	StartTime   time.Time
	EndTime     *time.Time
	Result      *seqopt.Result
	Err         string
	LastUpdated time.Time

	cancel context.CancelFunc
}

// Server exposes optimization jobs over HTTP and JSON-RPC 2.0. Jobs run
// asynchronously; submission returns an ID that status and cancel
// operations refer to.
type Server struct {
	cfg    *config.Config
	logger Logger

	jobs   map[string]*Job
	jobsMu sync.RWMutex

	// Bounds concurrent job execution.
	slots chan struct{}
}

// NewServer creates a new server instance with the given config and logger
func NewServer(cfg *config.Config, logger Logger) *Server {
	limit := cfg.Optimization.MaxConcurrentJobs
	if limit < 1 {
		limit = 1
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		jobs:   make(map[string]*Job),
		slots:  make(chan struct{}, limit),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleSubmit)
		r.Get("/jobs/{id}", s.handleStatus)
		r.Delete("/jobs/{id}", s.handleCancel)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string        `json:"jsonrpc"`
		ID      interface{}   `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "optimization.start":
		result, err = s.startJobFromParams(request.Params)
	case "optimization.status":
		result, err = s.jobStatusFromParams(request.Params)
	case "optimization.cancel":
		err = s.cancelJobFromParams(request.Params)
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// startJobFromParams handles the optimization.start JSON-RPC method. The
// first parameter is the job request object, the same shape the HTTP
// endpoint accepts.
func (s *Server) startJobFromParams(params []interface{}) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("missing required parameters")
	}
	raw, err := json.Marshal(params[0])
	if err != nil {
		return nil, fmt.Errorf("invalid parameter format, expected object")
	}
	var req JobRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid parameter format: %v", err)
	}
	return s.startJob(req)
}

// startJob validates the request, registers a pending job and launches it.
func (s *Server) startJob(req JobRequest) (interface{}, error) {
	sp, err := buildSpace(req.Space)
	if err != nil {
		return nil, err
	}
	objective, err := objectiveByName(req.Objective)
	if err != nil {
		return nil, err
	}
	settings, err := s.buildSettings(req)
	if err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	settings.Logger = logging.NewZapLogger(s.logger.WithFields(map[string]interface{}{
		"job_id": id,
	}))

	opt, err := seqopt.NewOptimizer(sp, settings)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:          id,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
		cancel:      cancel,
	}

	s.jobsMu.Lock()
	s.jobs[id] = job
	s.jobsMu.Unlock()

	jobsStarted.Inc()
	go s.runJob(ctx, job, opt, objective)

	return map[string]interface{}{
		"job_id": id,
		"status": "pending",
	}, nil
}

// runJob executes the optimization in a goroutine, bounded by the
// concurrency limit, and records the terminal state.
func (s *Server) runJob(ctx context.Context, job *Job, opt *seqopt.Optimizer, objective seqopt.Objective) {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		s.finishJob(job, nil, ctx.Err())
		return
	}

	s.jobsMu.Lock()
	job.Status = "running"
	job.LastUpdated = time.Now()
	s.jobsMu.Unlock()
	jobsRunning.Inc()
	defer jobsRunning.Dec()

	counted := func(p space.Point) (float64, error) {
		objectiveEvaluations.Inc()
		return objective(p)
	}

	result, err := opt.Run(ctx, counted)
	s.finishJob(job, result, err)
}

func (s *Server) finishJob(job *Job, result *seqopt.Result, err error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	// Cancellation may already have marked the job.
	if job.Status == "cancelled" {
		job.Result = result
		jobsFinished.WithLabelValues("cancelled").Inc()
		return
	}

	switch {
	case errors.Is(err, context.Canceled):
		job.Status = "cancelled"
	case err != nil:
		s.logger.Error("Optimization job failed", map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		job.Status = "failed"
		job.Err = err.Error()
	default:
		job.Status = "completed"
	}
	job.Result = result

	now := time.Now()
	job.EndTime = &now
	job.LastUpdated = now
	jobsFinished.WithLabelValues(job.Status).Inc()
}

// jobStatusFromParams handles the optimization.status JSON-RPC method.
func (s *Server) jobStatusFromParams(params []interface{}) (interface{}, error) {
	id, err := jobIDFromParams(params)
	if err != nil {
		return nil, err
	}
	return s.jobStatus(id)
}

func (s *Server) jobStatus(id string) (interface{}, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("job not found")
	}

	response := map[string]interface{}{
		"job_id":      job.ID,
		"status":      job.Status,
		"start_time":  job.StartTime.Format(time.RFC3339),
		"last_update": job.LastUpdated.Format(time.RFC3339),
	}
	if job.EndTime != nil {
		response["end_time"] = job.EndTime.Format(time.RFC3339)
	}
	if job.Err != "" {
		response["error"] = job.Err
	}
	if job.Result != nil && job.Result.BestPoint != nil {
		response["evaluations"] = len(job.Result.Values)
		response["best"] = map[string]interface{}{
			"point": pointByName(job.Result),
			"value": job.Result.BestValue,
		}
	}
	return response, nil
}

// cancelJobFromParams handles the optimization.cancel JSON-RPC method.
func (s *Server) cancelJobFromParams(params []interface{}) error {
	id, err := jobIDFromParams(params)
	if err != nil {
		return err
	}
	return s.cancelJob(id)
}

func (s *Server) cancelJob(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found")
	}

	switch job.Status {
	case "completed", "failed", "cancelled":
		return fmt.Errorf("cannot cancel job with status: %s", job.Status)
	}

	if job.cancel != nil {
		job.cancel()
	}

	job.Status = "cancelled"
	now := time.Now()
	job.EndTime = &now
	job.LastUpdated = now

	s.logger.Info("Optimization job cancelled", map[string]interface{}{
		"job_id": id,
	})
	return nil
}

func jobIDFromParams(params []interface{}) (string, error) {
	if len(params) == 0 {
		return "", fmt.Errorf("missing required parameters")
	}
	paramMap, ok := params[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid parameter format, expected object")
	}
	id, ok := paramMap["job_id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("job_id is required")
	}
	return id, nil
}

// pointByName maps the best point to dimension-name keys.
func pointByName(result *seqopt.Result) map[string]interface{} {
	out := make(map[string]interface{}, len(result.BestPoint))
	for i, name := range result.Space.Names() {
		out[name] = result.BestPoint[i]
	}
	return out
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

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Close cancels all running jobs.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		if job.cancel != nil {
			job.cancel()
		}
	}
	return nil
}

// handleSubmit handles POST /api/v1/jobs. It logs through the
// request-scoped logger injected by the logging middleware.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqLog := logging.FromContext(r.Context())

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reqLog.WithError(err).Warn("Rejected malformed job request")
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.startJob(req)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		reqLog.WithError(err).Warn("Rejected job submission")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	reqLog.WithField("objective", req.Objective).Info("Accepted optimization job")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

// handleStatus handles GET /api/v1/jobs/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing job ID", http.StatusBadRequest)
		return
	}

	result, err := s.jobStatus(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// handleCancel handles DELETE /api/v1/jobs/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing job ID", http.StatusBadRequest)
		return
	}

	err := s.cancelJob(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		logging.FromContext(r.Context()).WithFields(map[string]interface{}{
			"job_id": id,
			"error":  err.Error(),
		}).Warn("Rejected cancellation request")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "cancellation requested",
	})
}
