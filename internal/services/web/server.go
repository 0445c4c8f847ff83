// Package web hosts the quiz funnel HTTP surface: the three-screen quiz
// flow, the operator report, and static assets.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/leadfunnel/personaquiz/internal/lead"
	"github.com/leadfunnel/personaquiz/internal/partner"
	"github.com/leadfunnel/personaquiz/internal/services/web/routepath"
	"github.com/leadfunnel/personaquiz/internal/services/web/static"
	"github.com/leadfunnel/personaquiz/internal/storage"
)

// Config defines the inputs for the web server.
type Config struct {
	Addr string

	Roster   *partner.Roster
	Store    storage.TableStore
	Recorder *lead.Recorder

	// AdminPassword unlocks the full lead report. Empty disables the
	// master grant; partner passwords still work.
	AdminPassword string
	// AdminSecret signs report grant tokens.
	AdminSecret []byte
	// MasterLineHandle is the fallback add-friend handle when the
	// resolved operator has none.
	MasterLineHandle string

	Logger *log.Logger
}

// Server hosts the funnel HTTP server.
type Server struct {
	cfg        Config
	sessions   *sessionStore
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer builds a configured web server.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.Roster == nil {
		return nil, errors.New("partner roster is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("table store is required")
	}
	if cfg.Recorder == nil {
		return nil, errors.New("lead recorder is required")
	}
	if len(cfg.AdminSecret) == 0 {
		return nil, errors.New("admin grant secret is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{
		cfg:      cfg,
		sessions: newSessionStore(),
		logger:   cfg.Logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the routed HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(routepath.Root, s.handleHome)
	mux.HandleFunc(routepath.Start, s.handleStart)
	mux.HandleFunc(routepath.Answer, s.handleAnswer)
	mux.HandleFunc(routepath.Interest, s.handleInterest)
	mux.HandleFunc(routepath.Restart, s.handleRestart)
	mux.HandleFunc(routepath.Health, s.handleHealth)
	mux.HandleFunc(routepath.Admin, s.handleAdmin)
	mux.Handle(routepath.StaticPrefix,
		http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS)))
	return mux
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	s.logger.Printf("web listening on %s", s.httpServer.Addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
