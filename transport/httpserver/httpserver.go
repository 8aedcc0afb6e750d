// Package httpserver exposes a VM over HTTP: a single POST /run endpoint
// accepting an AST, args, and an optional fuel override, grounded on the
// teacher's examples/http-api handler style (respondJSON/respondError,
// a *http.ServeMux, json.NewDecoder/NewEncoder directly against the
// request/response bodies).
package httpserver

import (
	"encoding/json"
	"net/http"

	agent "github.com/tonioloewald/agent-99"
)

// Server wraps a VM for HTTP access. Every request runs with the same
// Capabilities; per-request capability overrides are out of scope.
type Server struct {
	vm          *agent.VM
	caps        agent.Capabilities
	defaultFuel int
}

// New builds a Server. defaultFuel <= 0 falls back to 1000.
func New(vm *agent.VM, caps agent.Capabilities, defaultFuel int) *Server {
	if defaultFuel <= 0 {
		defaultFuel = 1000
	}
	return &Server{vm: vm, caps: caps, defaultFuel: defaultFuel}
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/run", s.handleRun)
	return mux
}

type runRequest struct {
	AST  agent.Step     `json:"ast"`
	Args map[string]any `json:"args"`
	Fuel int            `json:"fuel"`
}

type runResponse struct {
	Output   any    `json:"output,omitempty"`
	FuelUsed int    `json:"fuelUsed"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	fuel := req.Fuel
	if fuel <= 0 {
		fuel = s.defaultFuel
	}

	result, err := s.vm.Run(r.Context(), req.AST, req.Args, agent.RunOptions{Fuel: fuel, Capabilities: s.caps})

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(runResponse{FuelUsed: result.FuelUsed, Error: err.Error()})
		return
	}
	json.NewEncoder(w).Encode(runResponse{Output: result.Output, FuelUsed: result.FuelUsed})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(runResponse{Error: msg})
}
