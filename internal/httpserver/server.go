package httpserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/daniacca/hybridchem/internal/kernel"
	"github.com/daniacca/hybridchem/internal/notify"
	"github.com/daniacca/hybridchem/internal/runconfig"
)

// envState is one running environment: its Coordinator plus the notifier
// plumbing feeding its /ws clients.
type envState struct {
	coord      *kernel.Coordinator
	species    []string
	notifyMgr  *notify.NotificationManager
	wsNotifier *notify.WebSocketNotifier
}

// Server hosts one Coordinator per environment ID, keyed by the {envID}
// path segment on every /env/{envID}/... route.
type Server struct {
	mu     sync.RWMutex
	envs   map[string]*envState
	logger *Logger
}

// NewServer builds an empty Server.
func NewServer(logger *Logger) *Server {
	return &Server{
		envs:   make(map[string]*envState),
		logger: logger,
	}
}

// seed (re)builds envID from cfg, replacing any prior state. The previous
// environment's notifier plumbing, if any, is closed first.
func (s *Server) seed(envID string, cfg runconfig.RunConfig) error {
	coord, err := runconfig.Build(cfg, s.logger)
	if err != nil {
		return fmt.Errorf("seed %s: %w", envID, err)
	}

	species := make([]string, 0)
	for _, es := range cfg.Engines {
		species = append(species, es.Owns...)
	}

	notifyMgr := notify.NewNotificationManager()
	wsNotifier := notify.NewWebSocketNotifier("ws")
	if err := notifyMgr.RegisterNotifier(wsNotifier); err != nil {
		return fmt.Errorf("seed %s: register websocket notifier: %w", envID, err)
	}

	s.mu.Lock()
	if prev, ok := s.envs[envID]; ok {
		prev.notifyMgr.Close()
	}
	s.envs[envID] = &envState{
		coord:      coord,
		species:    species,
		notifyMgr:  notifyMgr,
		wsNotifier: wsNotifier,
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) get(envID string) (*envState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	es, ok := s.envs[envID]
	return es, ok
}

// step advances envID by one native event (or a fast-forward to upto) and
// broadcasts a TransferEvent to its notifiers if a native step fired.
func (s *Server) step(envID string, upto float64) (bool, float64, error) {
	es, ok := s.get(envID)
	if !ok {
		return false, 0, fmt.Errorf("environment %q not found", envID)
	}

	fired, err := es.coord.Step(upto)
	if err != nil {
		return false, 0, err
	}

	if fired && es.coord.LastEvent() != nil {
		event := notify.TransferEvent{
			EnvironmentID: envID,
			WinnerKind:    es.coord.LastEvent().Kind().String(),
			T:             es.coord.T(),
			Timestamp:     time.Now().UnixMilli(),
		}
		es.notifyMgr.Enqueue(event, es.notifyMgr.ListNotifiers())
	}

	return fired, es.coord.T(), nil
}
