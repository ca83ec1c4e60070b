package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/academic-assistant/internal/engine"
	"github.com/knowledge-engine/academic-assistant/internal/provider"
	"github.com/knowledge-engine/academic-assistant/internal/search"
)

const (
	systemName    = "FUUAST Academic AI"
	systemVersion = "1.0.0"

	defaultSessionID = "guest_session"
	requestIDHeader  = "X-Request-ID"
)

type Server struct {
	Engine *engine.Assistant
	Logger *logrus.Entry
	Router *http.ServeMux

	httpServer *http.Server
}

func NewServer(eng *engine.Assistant, logger *logrus.Entry) *Server {
	s := &Server{
		Engine: eng,
		Logger: logger,
		Router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc("/", s.handleHealth)
	s.Router.HandleFunc("/api/v1/query", s.handleQuery)
	s.Router.HandleFunc("/api/v1/search", s.handleSearch)
	s.Router.HandleFunc("/api/v1/generate", s.handleGenerate)
	s.Router.HandleFunc("/api/v1/reload", s.handleReload)
	s.Router.HandleFunc("/api/v1/status", s.handleStatus)
	s.Router.HandleFunc("/api/v1/logs", s.handleLogs)
}

// Handler wraps the router with request ids and access logging
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.Router)
}

// Start serves until Shutdown is called
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.Logger.Infof("Starting API Server on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.Logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("Handled request")
	})
}

// Requests and responses

type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	TopK      *int   `json:"top_k,omitempty"`
}

type QueryResponse struct {
	Status      string                  `json:"status"`
	Timestamp   string                  `json:"timestamp"`
	Context     []search.ScoredDocument `json:"context"`
	QueryTokens int                     `json:"query_tokens"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	System  string `json:"system"`
	Version string `json:"version"`
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []search.ScoredDocument `json:"results"`
}

type GenerateRequest struct {
	Query string `json:"query"`
}

type GenerateResponse struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type StatusResponse struct {
	engine.EngineStats
	Uptime string `json:"uptime"`
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonResponse(w, http.StatusOK, HealthResponse{Status: "online", System: systemName, Version: systemVersion})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}
	if req.Query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	topK := s.Engine.DefaultTopK()
	if req.TopK != nil {
		topK = *req.TopK
	}

	s.Logger.WithField("session_id", req.SessionID).Infof("Processing query: %s", req.Query)

	res, err := s.Engine.Query(req.Query, topK)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, QueryResponse{
		Status:      "success",
		Timestamp:   res.Timestamp.Format(time.RFC3339),
		Context:     res.Context,
		QueryTokens: res.QueryTokens,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}

	topK := s.Engine.DefaultTopK()
	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'k' must be an integer"})
			return
		}
		topK = k
	}

	res, err := s.Engine.Query(query, topK)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, SearchResponse{Query: query, Results: res.Context})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}
	if req.Query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query is required"})
		return
	}

	answer, err := s.Engine.GenerateAnswer(r.Context(), req.Query)
	if err != nil {
		s.Logger.WithError(err).Error("Answer generation failed")
		writeEngineError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, GenerateResponse{
		Query:   req.Query,
		Answer:  answer.Text,
		Sources: answer.Sources,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := s.Engine.Reload(r.Context())
	if err != nil {
		s.Logger.WithError(err).Error("Reload failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.Engine.Stats()
	jsonResponse(w, http.StatusOK, StatusResponse{
		EngineStats: stats,
		Uptime:      time.Since(stats.StartTime).Round(time.Second).String(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'limit' must be a non-negative integer"})
			return
		}
		limit = n
	}

	jsonResponse(w, http.StatusOK, s.Engine.RecentQueries(limit))
}

func writeEngineError(w http.ResponseWriter, err error) {
	var topKErr *search.InvalidTopKError
	switch {
	case errors.As(err, &topKErr):
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, provider.ErrGenerationDisabled):
		jsonResponse(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	}
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
