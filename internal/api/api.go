// Package api provides HTTP handlers and the API server for StorySprout.
//
// It exposes RESTful endpoints for templates, sessions, interactions, and the
// story archive. All progression logic lives in the learning engine; this
// package is transport plumbing plus the image-generation cadence.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/storysprout/storysprout/internal/catalog"
	"github.com/storysprout/storysprout/internal/learning"
	"github.com/storysprout/storysprout/internal/store"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":8080"

// ImageGenerator renders illustrations for story stages. A failed generation
// leaves the image absent; it never fails the turn.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the engine, catalog, image generator, and story archive behind
// HTTP handlers.
type Server struct {
	engine  *learning.Engine
	catalog *catalog.Catalog
	images  ImageGenerator
	archive store.Store
	addr    string
}

// NewServer creates an API server. images may be nil when no image backend is
// configured; archive may be nil to disable the story archive.
func NewServer(engine *learning.Engine, cat *catalog.Catalog, images ImageGenerator, archive store.Store, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		engine:  engine,
		catalog: cat,
		images:  images,
		archive: archive,
		addr:    cfg.Addr,
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/templates", s.templatesHandler)
	mux.HandleFunc("/templates/", s.templateHandler)
	mux.HandleFunc("/sessions", s.createSessionHandler)
	mux.HandleFunc("/sessions/", s.sessionHandler)
	mux.HandleFunc("/interact", s.interactHandler)
	mux.HandleFunc("/finish", s.finishHandler)
	mux.HandleFunc("/stories", s.storiesHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks.
func (s *Server) Run() error {
	slog.Info("StorySprout API running", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}
