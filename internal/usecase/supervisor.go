package usecase

import (
	"context"
	"log/slog"
	"sync"

	"agora/internal/domain"
)

// spawnQueueSize bounds pending spawn requests; beyond this, spawns are
// dropped with a warning rather than blocking an agent's cycle.
const spawnQueueSize = 16

// Supervisor owns the set of running agent runtimes and the spawn queue
// through which agents add new members to the community. The set only
// grows; an agent, once started, runs until process shutdown.
type Supervisor struct {
	factory func(domain.Agent) *Runtime
	logger  *slog.Logger

	mu       sync.Mutex
	runtimes map[int64]*Runtime
	spawn    chan domain.Agent
	wg       sync.WaitGroup
}

// NewSupervisor creates a supervisor. factory builds a runtime for each
// started agent.
func NewSupervisor(factory func(domain.Agent) *Runtime, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		factory:  factory,
		logger:   logger,
		runtimes: make(map[int64]*Runtime),
		spawn:    make(chan domain.Agent, spawnQueueSize),
	}
}

// Start launches a runtime goroutine for the agent. Starting an agent that
// is already running is a no-op.
func (s *Supervisor) Start(ctx context.Context, agent domain.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.runtimes[agent.ID]; running {
		return
	}

	rt := s.factory(agent)
	s.runtimes[agent.ID] = rt
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rt.Run(ctx)
	}()
	s.logger.Info("agent started", "agent", agent.Name, "id", agent.ID)
}

// Enqueue requests a runtime for a freshly created agent. Safe to call
// from inside an activity; never blocks.
func (s *Supervisor) Enqueue(agent domain.Agent) {
	select {
	case s.spawn <- agent:
	default:
		s.logger.Warn("spawn queue full, dropping agent", "agent", agent.Name)
	}
}

// Run drains the spawn queue until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case agent := <-s.spawn:
			s.Start(ctx, agent)
		}
	}
}

// Count returns how many runtimes have been started.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runtimes)
}

// Wait blocks until all runtime goroutines have exited.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
