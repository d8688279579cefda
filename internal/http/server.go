// Package http exposes the dashboard over HTTP: the derived view, the
// create form target, login/logout, the websocket feed and the export
// trigger. All data access goes through the report service; this layer only
// translates requests and failure taxonomy into status codes.
package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"expensedash/internal/core"
	applog "expensedash/internal/log"
	"expensedash/internal/report"
	"expensedash/internal/session"
	"expensedash/internal/ws"
)

// LoginPath is the unauthenticated entry point every guarded handler
// redirects to.
const LoginPath = "/login"

// AuthAPI is the login slice of the expense service client.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Exporter pushes the current report to an external spreadsheet.
type Exporter interface {
	Export(ctx context.Context, f core.Range, v report.ViewState) error
}

// Options wires a Server.
type Options struct {
	Addr           string
	Provider       *session.Provider
	Auth           AuthAPI
	Reports        *report.Service
	Exporter       Exporter // optional
	Hub            *ws.Hub  // optional
	CurrencySymbol string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	provider *session.Provider
	auth     AuthAPI
	reports  *report.Service
	exporter Exporter
	hub      *ws.Hub
	currency string
	logger   *applog.Logger

	limiter      *rateLimiter
	upgrader     websocket.Upgrader
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		provider: opts.Provider,
		auth:     opts.Auth,
		reports:  opts.Reports,
		exporter: opts.Exporter,
		hub:      opts.Hub,
		currency: opts.CurrencySymbol,
		logger:   opts.Logger,
		limiter:  newRateLimiter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc(LoginPath, s.withTrace(s.handleLogin))
	mux.HandleFunc("/logout", s.withTrace(s.handleLogout))
	mux.HandleFunc("/dashboard/view", s.withTrace(s.handleView))
	mux.HandleFunc("/dashboard/expenses", s.withTrace(s.handleCreateExpense))
	mux.HandleFunc("/dashboard/export", s.withTrace(s.handleExport))
	mux.HandleFunc("/ws", s.handleWebsocket)

	return s
}

// Shutdown stops the middleware goroutines and the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
