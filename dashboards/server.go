package dashboards

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/reporters"
	"github.com/reusee/bridges/vars"
)

// DashboardAddr is empty when the dashboard is disabled.
type DashboardAddr string

func (Module) DashboardAddr(
	loader configs.Loader,
) DashboardAddr {
	return vars.FirstNonZero(
		configs.First[DashboardAddr](loader, "dashboard_addr"),
		DashboardAddr(os.Getenv("BRIDGE_DASHBOARD")),
	)
}

type Server struct {
	addr    string
	hub     *Hub
	metrics *metrics.Metrics
	report  func() reporters.Report
	logger  logs.Logger

	mu  sync.Mutex
	ln  net.Listener
	srv *http.Server
}

type NewServer func(addr string, report func() reporters.Report) *Server

func (Module) NewServer(
	hub *Hub,
	m *metrics.Metrics,
	logger logs.Logger,
) NewServer {
	return func(addr string, report func() reporters.Report) *Server {
		return &Server{
			addr:    addr,
			hub:     hub,
			metrics: m,
			report:  report,
			logger:  logger,
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.serveState)
	mux.Handle("GET /ws", s.hub)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /{$}", serveIndex)
	return mux
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.report()); err != nil {
		s.logger.WarnContext(r.Context(), "encode state", "error", err)
	}
}

func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.InfoContext(ctx, "dashboard", "addr", ln.Addr().String())
	return nil
}

func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs until ctx is done, then closes websocket clients and drains requests.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	srv, ln := s.srv, s.ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	})
	defer stop()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
