// Package api provides the HTTP JSON API the dashboard host consumes.
// GET endpoints are public (read-only observation); POST endpoints require
// a bearer token and drive the run (setup, step, speed).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/engine"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/persistence"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Runner   *engine.Runner
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu    sync.Mutex
	runID string
}

// SetRunID records the run whose history the API serves.
func (s *Server) SetRunID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = id
}

// RunID returns the current run identifier.
func (s *Server) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Setup rebuilds the whole world; keep it from being hammered.
	setupLimiter := NewRateLimiter(30, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/customers", s.handleCustomers)
	mux.HandleFunc("/api/v1/parameters", s.handleParameters)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/diagnostics", s.handleDiagnostics)

	// Control endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/setup", s.adminOnly(RateLimitMiddleware(setupLimiter, s.handleSetup)))
	mux.HandleFunc("/api/v1/step", s.adminOnly(s.handleStep))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are always
// allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "control endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	speed := s.Runner.Speed()
	running := s.Runner.Running()

	var status map[string]any
	s.Runner.Do(func(world *engine.World) {
		status = map[string]any{
			"name":       "SCMS",
			"run_id":     s.RunID(),
			"month":      world.Month,
			"seed":       world.Seed,
			"terminated": world.Terminated(),
			"speed":      speed,
			"running":    running,
			"customers":  len(world.Customers),
			"expelled":   world.ExpelledAgents,
			"bank":       world.Bank,
			"fund":       world.Fund,
		}
	})
	writeJSON(w, status)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var snap engine.Snapshot
	s.Runner.Do(func(world *engine.World) {
		snap = world.Snapshot()
	})
	writeJSON(w, snap)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	var cells []engine.Cell
	s.Runner.Do(func(world *engine.World) {
		cells = world.GridView()
	})
	writeJSON(w, cells)
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	var params engine.Params
	s.Runner.Do(func(world *engine.World) {
		params = world.Params
	})
	writeJSON(w, params)
}

// handleSetup reinitializes the world. The request body is a partial
// parameter set decoded over the current parameters, so hosts send only
// what they change.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var params engine.Params
	s.Runner.Do(func(world *engine.World) {
		params = world.Params
	})

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	world, err := engine.NewWorld(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	if s.DB != nil {
		if err := s.DB.CreateRun(runID, world.Seed, world.Params); err != nil {
			slog.Error("run registration failed", "error", err)
			http.Error(w, "run registration failed", http.StatusInternalServerError)
			return
		}
	}

	s.Runner.SetSpeed(0)
	s.Runner.Replace(world)
	s.SetRunID(runID)
	slog.Info("world reinitialized", "run_id", runID, "seed", world.Seed)

	writeJSON(w, map[string]any{
		"run_id": runID,
		"state":  world.Snapshot(),
	})
}

// handleStep advances exactly one period, for hosts driving the run
// manually while the runner is paused.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var snap engine.Snapshot
	var terminated bool
	s.Runner.Do(func(world *engine.World) {
		terminated = world.Terminated()
		if !terminated {
			world.Step()
			if s.Runner.OnPeriod != nil {
				s.Runner.OnPeriod(world)
			}
		}
		snap = world.Snapshot()
	})

	if terminated {
		http.Error(w, "run has reached its horizon", http.StatusConflict)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Runner.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": s.Runner.Speed()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	from, to, limit := 0, 1<<31-1, 200
	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.Atoi(f); err == nil {
			from = v
		}
	}
	if t := r.URL.Query().Get("to"); t != "" {
		if v, err := strconv.Atoi(t); err == nil {
			to = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 2000 {
			limit = v
		}
	}

	rows, err := s.DB.LoadPeriods(s.RunID(), from, to, limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		writeJSON(w, []persistence.PeriodRow{})
		return
	}
	if rows == nil {
		rows = []persistence.PeriodRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	rows, err := s.DB.LoadDiagnostics(s.RunID(), limit)
	if err != nil {
		slog.Error("diagnostics query failed", "error", err)
		writeJSON(w, []persistence.DiagnosticRow{})
		return
	}
	if rows == nil {
		rows = []persistence.DiagnosticRow{}
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}
