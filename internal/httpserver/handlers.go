package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/daniacca/hybridchem/internal/runconfig"
	"github.com/daniacca/hybridchem/internal/snapshot"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /env/{envID}/seed
// Body: a runconfig.RunConfig JSON document.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	envID := mux.Vars(r)["envID"]

	var cfg runconfig.RunConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid run config json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.seed(envID, cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("seeded"))
}

type stepRequest struct {
	Upto float64 `json:"upto"`
}

type stepResponse struct {
	Fired bool    `json:"fired"`
	T     float64 `json:"t"`
}

// POST /env/{envID}/step
// Body: {"upto": <deadline>}
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	envID := mux.Vars(r)["envID"]

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid step request: "+err.Error(), http.StatusBadRequest)
		return
	}

	fired, t, err := s.step(envID, req.Upto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stepResponse{Fired: fired, T: t})
}

// GET /env/{envID}/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	envID := mux.Vars(r)["envID"]
	es, ok := s.get(envID)
	if !ok {
		http.Error(w, "environment not found", http.StatusNotFound)
		return
	}

	snap := snapshot.Build(envID, es.coord, es.species)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// GET /env/{envID}/ws
// Upgrades to a websocket feed of TransferEvents for envID.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	envID := mux.Vars(r)["envID"]
	es, ok := s.get(envID)
	if !ok {
		http.Error(w, "environment not found", http.StatusNotFound)
		return
	}

	upgrader := es.wsNotifier.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed for %s: %v", envID, err)
		return
	}
	es.wsNotifier.RegisterClient(conn)

	go func() {
		defer es.wsNotifier.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Routes builds the gorilla/mux router for every /env/{envID}/... endpoint.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/env/{envID}/seed", s.handleSeed).Methods(http.MethodPost)
	r.HandleFunc("/env/{envID}/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/env/{envID}/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/env/{envID}/ws", s.handleWatch).Methods(http.MethodGet)
	return r
}
