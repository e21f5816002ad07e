// Package http exposes the extraction service: jobs are submitted as
// JSON or HCL and run as Temporal workflows.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/leowmjw/go-tutor-featex/pkg/hcl"
	"github.com/leowmjw/go-tutor-featex/pkg/temporal"
)

// Server represents the HTTP server for the extraction service
type Server struct {
	logger         *slog.Logger
	temporalClient client.Client
	addr           string
	taskQueue      string
}

// NewServer creates a new HTTP server
func NewServer(logger *slog.Logger, temporalClient client.Client, addr, taskQueue string) *Server {
	return &Server{
		logger:         logger,
		temporalClient: temporalClient,
		addr:           addr,
		taskQueue:      taskQueue,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("POST /extractions", s.handleSubmit)
	mux.HandleFunc("GET /extractions/{id}", s.handleResult)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.loggingMiddleware(mux)

	server := &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// submission is one started extraction workflow in the submit response.
type submission struct {
	Job        string `json:"job,omitempty"`
	WorkflowID string `json:"workflow_id"`
}

// Job submission endpoint. The body is either a single JSON
// ExtractionRequest or an HCL file with one or more job blocks.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	contentType, err := hcl.DetectContentType(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var jobs []hcl.Job
	if contentType == hcl.ContentTypeHCL {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		jobs, err = hcl.ParseJobs(body, "request.hcl")
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		var request temporal.ExtractionRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		jobs = []hcl.Job{{Request: request}}
	}

	for _, job := range jobs {
		if job.Request.LogDir == "" || job.Request.ComplexityFile == "" || job.Request.OutputPath == "" {
			s.respondError(w, http.StatusBadRequest, "log_dir, complexity_file and output_path are required")
			return
		}
	}

	submissions := make([]submission, 0, len(jobs))
	for _, job := range jobs {
		workflowID := temporal.GenerateExtractionWorkflowID()

		s.logger.Info("Starting extraction workflow",
			"workflowID", workflowID,
			"job", job.Name,
			"logDir", job.Request.LogDir)

		_, err := s.temporalClient.ExecuteWorkflow(
			r.Context(),
			client.StartWorkflowOptions{
				ID:        workflowID,
				TaskQueue: s.taskQueue,
			},
			temporal.ExtractionWorkflow,
			job.Request,
		)
		if err != nil {
			s.logger.Error("Failed to start extraction workflow", "error", err)
			s.respondError(w, http.StatusInternalServerError, "failed to start extraction")
			return
		}

		submissions = append(submissions, submission{Job: job.Name, WorkflowID: workflowID})
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":     "extraction queued",
		"submissions": submissions,
	})
}

// Result endpoint. Blocks until the workflow completes, so clients can
// long-poll a submitted job.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")
	if workflowID == "" {
		s.respondError(w, http.StatusBadRequest, "workflow ID is required")
		return
	}

	run := s.temporalClient.GetWorkflow(r.Context(), workflowID, "")

	var result *temporal.ExtractionResult
	if err := run.Get(r.Context(), &result); err != nil {
		s.logger.Error("Extraction workflow failed", "workflowID", workflowID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	s.logger.Info("Extraction completed", "workflowID", workflowID, "rows", result.Rows)
	s.respondJSON(w, http.StatusOK, result)
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", duration,
			"user_agent", r.UserAgent(),
		)
	})
}

// Response helpers
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", "status", status, "message", message)
	s.respondJSON(w, status, map[string]string{"error": message})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
