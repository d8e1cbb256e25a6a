// Package api provides the HTTP server for katareport.
//
// It exposes the report endpoints used by the form widget, a health check,
// the template set catalogue, prometheus metrics and the embedded widget.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/katachat/katareport/internal/config"
	"github.com/katachat/katareport/internal/infra"
	"github.com/katachat/katareport/internal/locale"
	"github.com/katachat/katareport/internal/logging"
	"github.com/katachat/katareport/internal/pipeline"
	"github.com/katachat/katareport/pkg/models"
	"github.com/katachat/katareport/pkg/utils"
	"github.com/katachat/katareport/web"
)

// MaxBodyBytes caps request bodies on the analyze endpoints.
const MaxBodyBytes = 64 << 10

// EmployeeSet is the template set served by /boss_analyze.
const EmployeeSet = "en-employee"

// Analyzer runs the report pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, setKey string, req models.SubmissionRequest) (*pipeline.Result, error)
}

// Deps are the server's collaborators.
type Deps struct {
	Config     *config.Config
	Analyzer   Analyzer
	Registry   *locale.Registry
	Collectors *infra.Collectors
	Logger     *zap.Logger
	Version    string
	// Widget overrides the embedded widget filesystem (tests).
	Widget fs.FS
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	analyzer Analyzer
	registry *locale.Registry
	stats    *infra.Collectors
	logger   *zap.Logger
	version  string
	widget   fs.FS
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(d Deps) (*Server, error) {
	if d.Config == nil || d.Analyzer == nil || d.Registry == nil {
		return nil, errors.New("api: config, analyzer and registry are required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.Widget == nil && d.Config.API.ServeWidget {
		d.Widget = web.WidgetFS()
	}

	s := &Server{
		cfg:      d.Config,
		analyzer: d.Analyzer,
		registry: d.Registry,
		stats:    d.Collectors,
		logger:   d.Logger.Named("api"),
		version:  d.Version,
		widget:   d.Widget,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// Report endpoints used by the widget
	r.Post("/analyze_name", s.handleAnalyzeName)
	r.Post("/boss_analyze", s.handleBossAnalyze)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/analyze/{set}", s.handleAnalyzeSet)
		r.Get("/template-sets", s.handleTemplateSets)

		// Configuration (read-only)
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	if s.stats != nil {
		r.Method(http.MethodGet, "/metrics", s.stats.Handler())
	}

	if s.widget != nil {
		r.Handle("/*", http.FileServerFS(s.widget))
	}

	return r
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Version:      s.version,
		Time:         utils.FormatDateTime(utils.NowSGT()),
		TemplateSets: s.registry.IDs(),
	})
}

func (s *Server) handleTemplateSets(w http.ResponseWriter, r *http.Request) {
	var out []TemplateSetInfo
	for _, id := range s.registry.IDs() {
		set, err := s.registry.Lookup(id)
		if err != nil {
			continue
		}
		info := TemplateSetInfo{
			ID:       set.ID,
			Language: set.Language.String(),
			Title:    set.Title,
			Default:  set.ID == s.cfg.Report.DefaultSet,
		}
		for _, g := range set.Groups {
			info.Groups = append(info.Groups, g.Title)
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAnalyzeName serves the default set; the form's locale field may
// pick another.
func (s *Server) handleAnalyzeName(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, func(req models.SubmissionRequest) string {
		if req.Locale != "" {
			return req.Locale
		}
		return s.cfg.Report.DefaultSet
	})
}

func (s *Server) handleBossAnalyze(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, func(models.SubmissionRequest) string { return EmployeeSet })
}

func (s *Server) handleAnalyzeSet(w http.ResponseWriter, r *http.Request) {
	set := chi.URLParam(r, "set")
	s.analyze(w, r, func(models.SubmissionRequest) string { return set })
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, pick func(models.SubmissionRequest) string) {
	var req models.SubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), pick(req), req)
	if err != nil {
		status := pipeline.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("analyze failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err))
		}
		writeError(w, status, pipeline.PublicMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, res.Response())
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
