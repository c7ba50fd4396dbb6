package transport

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/project"
	"github.com/rpggio/hvacquote/internal/export"
)

// Estimates exposes the active project for download.
// *project.Store satisfies it.
type Estimates interface {
	Active() project.Project
	Catalog() *catalog.Catalog
}

// Options wires the HTTP surface.
type Options struct {
	// MCP serves /mcp, typically the go-sdk streamable handler.
	MCP       http.Handler
	Estimates Estimates
	// Metrics serves /metrics when non-nil.
	Metrics   http.Handler
	AuthToken string
	Logger    *slog.Logger
}

type server struct {
	estimates Estimates
	logger    *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &server{estimates: opts.Estimates, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthToken))
		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
			r.Handle("/mcp/*", opts.MCP)
		}
		if opts.Estimates != nil {
			r.Get("/export.xlsx", srv.handleExport)
		}
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	p := s.estimates.Active()

	// Render fully before writing headers so a failure can still be a 500.
	var buf bytes.Buffer
	if err := export.Write(&buf, p, s.estimates.Catalog()); err != nil {
		s.logger.Error("export failed", "project_id", p.ID, "error", err, "request_id", RequestIDFromContext(r.Context()))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(p.Name)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
