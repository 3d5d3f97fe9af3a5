package api

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/metrics"
	"github.com/nijaru/yt-notes/middleware"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/services/video"
	"github.com/nijaru/yt-notes/validation"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	pipeline  *PipelineHandler
	config    *config.Config
	logger    *logrus.Logger
	server    *http.Server
	startTime time.Time
}

type ServerOption func(*Server)

// NewServer creates a new API server with the provided services and options
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// WithServices sets up the handlers with the provided services
func WithServices(videoSvc video.Service) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator(s.config.Transcript.DefaultLanguage)
		s.pipeline = NewPipelineHandler(videoSvc, validator, s.logger)
	}
}

// WithLogger sets a custom logger for the server. Pass it before
// WithServices so handlers share it.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.addV1Routes(mux)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServer(http.FS(static)))

	return s.middleware(mux)
}

func (s *Server) addV1Routes(mux *http.ServeMux) {
	const v1Prefix = "/api/v1"

	if s.pipeline == nil {
		return
	}

	mux.HandleFunc("POST "+v1Prefix+"/video-id", s.pipeline.HandleVideoID)
	mux.HandleFunc("POST "+v1Prefix+"/transcript", s.pipeline.HandleTranscript)
	mux.HandleFunc("POST "+v1Prefix+"/translate", s.pipeline.HandleStage(models.StageTranslate))
	mux.HandleFunc("POST "+v1Prefix+"/topics", s.pipeline.HandleStage(models.StageTopics))
	mux.HandleFunc("POST "+v1Prefix+"/notes", s.pipeline.HandleStage(models.StageNotes))
	mux.HandleFunc("POST "+v1Prefix+"/process", s.pipeline.HandleProcess)
}

func (s *Server) middleware(mux *http.ServeMux) http.Handler {
	mw := s.config.Middleware
	var middlewares []func(http.Handler) http.Handler

	if mw.EnableRecover {
		middlewares = append(middlewares, middleware.Recovery(s.logger))
	}
	if mw.EnableRequestID {
		middlewares = append(middlewares, middleware.RequestID(s.logger))
	}
	if mw.EnableLogger {
		middlewares = append(middlewares, middleware.Logging(s.logger, mux))
	}
	if mw.EnableCORS {
		middlewares = append(middlewares, middleware.CORS(s.config.CORS))
	}
	if mw.EnableTimeout && s.config.RequestTimeout > 0 {
		middlewares = append(middlewares, middleware.Timeout(s.config.RequestTimeout))
	}
	if mw.EnableRateLimit && s.config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
		middlewares = append(middlewares, limiter.Middleware)
	}

	return middleware.Chain(mux, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
		"model":     s.config.LLM.Model,
		"provider":  s.config.Transcript.Provider,
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, http.StatusOK, status)
}
