// Package fakeappliance is an in-memory stand-in for the appliance HTTP API.
//
// It implements the listing, refresh and /cli-json/ commands the layout
// engine uses, keeps state per resource, records every command it receives,
// and can be told to fail specific paths. Tests run it under httptest; the
// CLI serves it with `netsmith fake-appliance`.
package fakeappliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/geometry"
)

// PortSize is the width and height of every connection the fake creates.
const PortSize = 10

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

type port struct {
	router string
	rect   geometry.Rect
}

type canvas struct {
	routers map[string]geometry.Rect // by alias
	ports   map[string]port          // by local device name
	devices map[string]bool
}

func newCanvas() *canvas {
	return &canvas{
		routers: make(map[string]geometry.Rect),
		ports:   make(map[string]port),
		devices: make(map[string]bool),
	}
}

// Server is the fake appliance. The zero value is not usable; call New.
type Server struct {
	logger *log.Logger

	mu        sync.Mutex
	resources map[int]*canvas
	calls     []Call
	failures  map[string][]int // path -> queued status codes
}

// New returns an empty fake appliance.
func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		logger:    logger,
		resources: make(map[int]*canvas),
		failures:  make(map[string][]int),
	}
}

// Handler returns the HTTP routes of the fake.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Get("/vr/{shelf}/{resource}/list", s.handleListRouters)
	r.Get("/vrcx/{shelf}/{resource}/list", s.handleListPorts)
	r.Post("/vr/{shelf}/{resource}/{target}", s.handleRefresh)
	r.Post("/cli-json/{cmd}", s.handleCommand)
	return r
}

// ListenAndServe serves the fake on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// =============================================================================
// Test Controls
// =============================================================================

// FailNext makes the next request to path answer with status.
// Repeated calls queue further failures.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], status)
}

// SetRouter places (or moves) a router directly.
func (s *Server) SetRouter(resource int, alias string, r geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas(resource).routers[alias] = r
}

// SetPort places (or moves) a connection directly.
func (s *Server) SetPort(resource int, router, name string, r geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas(resource).ports[name] = port{router: router, rect: r}
}

// Router returns the placement of a router.
func (s *Server) Router(resource int, alias string) (geometry.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.canvas(resource).routers[alias]
	return r, ok
}

// Port returns the router a connection is attached to and its placement.
func (s *Server) Port(resource int, name string) (string, geometry.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.canvas(resource).ports[name]
	return p.router, p.rect, ok
}

// RouterCount returns how many routers exist on resource.
func (s *Server) RouterCount(resource int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.canvas(resource).routers)
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Commands returns the paths of POST requests received so far, in order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.Method == http.MethodPost {
			out = append(out, c.Path)
		}
	}
	return out
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) canvas(resource int) *canvas {
	c, ok := s.resources[resource]
	if !ok {
		c = newCanvas()
		s.resources[resource] = c
	}
	return c
}

// record logs the call and applies any queued failure for its path.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path}
		if r.Method == http.MethodPost {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"invalid JSON: " + err.Error()}})
				return
			}
			call.Body = body
			data, _ := json.Marshal(body)
			r.Body = io.NopCloser(bytes.NewReader(data))
		}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		var status int
		if q := s.failures[r.URL.Path]; len(q) > 0 {
			status, s.failures[r.URL.Path] = q[0], q[1:]
		}
		s.mu.Unlock()

		s.logger.Debug("fake appliance", "method", r.Method, "path", r.URL.Path)
		if status != 0 {
			writeJSON(w, status, map[string]any{"errors": []string{"injected failure"}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func resourceParam(r *http.Request) (int, error) {
	res, err := strconv.Atoi(chi.URLParam(r, "resource"))
	if err != nil || res < 1 {
		return 0, fmt.Errorf("invalid resource %q", chi.URLParam(r, "resource"))
	}
	return res, nil
}

func (s *Server) handleListRouters(w http.ResponseWriter, r *http.Request) {
	res, err := resourceParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	var entries []listEntry
	for alias, rect := range s.canvas(res).routers {
		entries = append(entries, listEntry{eid: fmt.Sprintf("1.%d.1.65535.%s", res, alias), rect: rect})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, listing(appliance.ElementRouters, entries, r.URL.Query().Get("fields")))
}

func (s *Server) handleListPorts(w http.ResponseWriter, r *http.Request) {
	res, err := resourceParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	var entries []listEntry
	for name, p := range s.canvas(res).ports {
		entries = append(entries, listEntry{eid: fmt.Sprintf("1.%d.%s", res, name), rect: p.rect})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, listing(appliance.ElementPorts, entries, r.URL.Query().Get("fields")))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := resourceParam(r); err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"errors": []string{}})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{err.Error()}})
		return
	}
	cmd := chi.URLParam(r, "cmd")

	s.mu.Lock()
	err := s.apply(cmd, body)
	s.mu.Unlock()

	switch {
	case err == errUnknownCommand:
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []string{"unknown command " + cmd}})
	case err != nil:
		writeJSON(w, http.StatusOK, map[string]any{"errors": []string{err.Error()}})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"errors": []string{}})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
