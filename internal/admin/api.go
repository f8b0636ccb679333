// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package admin serves the operator HTTP API for module management.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

// ModulesResponse is the body of GET /modules.
type ModulesResponse struct {
	Loaded   []string `json:"loaded"`
	Unloaded []string `json:"unloaded"`
}

// ChangeResponse is the body of the load and unload endpoints.
type ChangeResponse struct {
	Module  string `json:"module"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// CommandResponse describes one registered command.
type CommandResponse struct {
	Name        string `json:"name"`
	Module      string `json:"module"`
	Description string `json:"description"`
	Usage       string `json:"usage,omitempty"`
}

// Router builds the API routes over manager and commands.
func Router(manager module.Manager, commands module.CommandQuery) http.Handler {
	h := &handlers{manager: manager, commands: commands}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/modules", func(r chi.Router) {
		r.Get("/", h.listModules)
		r.Post("/{name}/load", h.loadModule)
		r.Post("/{name}/unload", h.unloadModule)
	})
	r.Get("/commands", h.listCommands)
	return r
}

type handlers struct {
	manager  module.Manager
	commands module.CommandQuery
}

// listModules handles GET /modules.
func (h *handlers) listModules(w http.ResponseWriter, r *http.Request) {
	unloaded, err := h.manager.UnloadedModules(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ModulesResponse{
		Loaded:   nonNil(h.manager.LoadedModules()),
		Unloaded: nonNil(unloaded),
	})
}

// loadModule handles POST /modules/{name}/load.
func (h *handlers) loadModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	changed, err := h.manager.LoadModule(r.Context(), name)
	switch {
	case err != nil && errutil.Code(err) == module.CodeModuleNotFound:
		writeError(w, r, http.StatusNotFound, err)
	case err != nil && changed:
		// Loaded but OnLoad failed; the module stays registered.
		writeJSON(w, http.StatusOK, ChangeResponse{Module: name, Changed: true, Error: err.Error()})
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, ChangeResponse{Module: name, Changed: changed})
	}
}

// unloadModule handles POST /modules/{name}/unload.
func (h *handlers) unloadModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	changed, err := h.manager.UnloadModule(r.Context(), name)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ChangeResponse{Module: name, Changed: changed})
}

// listCommands handles GET /commands, optionally filtered by ?module=.
func (h *handlers) listCommands(w http.ResponseWriter, r *http.Request) {
	var pred func(command.Command) bool
	if owner := r.URL.Query().Get("module"); owner != "" {
		pred = command.OwnedBy(owner)
	}
	cmds := h.commands.Query(pred)
	out := make([]CommandResponse, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, CommandResponse{
			Name:        c.Name,
			Module:      c.Module,
			Description: c.Description,
			Usage:       c.Usage,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	errutil.LogErrorContext(r.Context(), slog.Default(), "admin request failed", err,
		"path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": errutil.Code(err)})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Server serves the admin API.
type Server struct {
	addr       string
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an admin API server on addr.
func NewServer(addr string, manager module.Manager, commands module.CommandQuery) *Server {
	return &Server{addr: addr, handler: Router(manager, commands)}
}

// Start begins serving. The returned channel receives a serve failure and
// is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("admin server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("admin server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("admin server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.With("operation", "shutdown_admin_server").Wrap(err)
	}
	slog.Info("admin server stopped")
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
