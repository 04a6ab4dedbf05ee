package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
)

// ActionJournal records what an agent has done, feeding the
// "what haven't you done in a while" hint in the decision prompt.
// Implementations are best-effort; errors never abort a cycle.
type ActionJournal interface {
	Record(ctx context.Context, agentID int64, kind, detail string) error
	Recent(ctx context.Context, agentID int64, n int) ([]domain.ActionRecord, error)
}

// ActionRunner executes one decided activity for an agent.
type ActionRunner interface {
	Run(ctx context.Context, agent domain.Agent, decision domain.ActionDecision) error
}

// RuntimeConfig holds the loop timing knobs.
type RuntimeConfig struct {
	StartDelayBase   time.Duration
	StartDelayJitter time.Duration
	// RetryDelay applies when no decision text could be generated.
	RetryDelay time.Duration
	// ErrorBackoff applies after an unexpected cycle failure.
	ErrorBackoff time.Duration
}

// Runtime drives one agent's autonomous loop: decide, act, wait, repeat.
// Cycles are strictly sequential per agent; only ctx cancellation ends
// the loop.
type Runtime struct {
	agent   domain.Agent
	store   domain.Store
	gen     domain.TextGenerator
	journal ActionJournal
	runner  ActionRunner
	cfg     RuntimeConfig
	logger  *slog.Logger

	// sleep is injected so tests can run cycles without wall-clock waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRuntime creates an agent runtime.
func NewRuntime(agent domain.Agent, store domain.Store, gen domain.TextGenerator, journal ActionJournal, runner ActionRunner, cfg RuntimeConfig, logger *slog.Logger) *Runtime {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 60 * time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 30 * time.Second
	}
	return &Runtime{
		agent:   agent,
		store:   store,
		gen:     gen,
		journal: journal,
		runner:  runner,
		cfg:     cfg,
		logger:  logger.With("agent", agent.Name),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes the loop until ctx is cancelled. Startup is staggered so a
// fleet of agents does not stampede the providers.
func (r *Runtime) Run(ctx context.Context) {
	delay := r.cfg.StartDelayBase
	if r.cfg.StartDelayJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(r.cfg.StartDelayJitter)))
	}
	if err := r.sleep(ctx, delay); err != nil {
		return
	}

	for {
		wait, err := r.Cycle(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			r.logger.Warn("cycle failed", "error", err)
		}
		if err := r.sleep(ctx, wait); err != nil {
			return
		}
	}
}

// Cycle runs one decide-act iteration and returns how long to wait before
// the next one.
func (r *Runtime) Cycle(ctx context.Context) (time.Duration, error) {
	cycleID := ulid.Make().String()
	ctx, span := tracer.StartSpan(ctx, "agent.cycle")
	defer span.End()
	span.SetAttributes(
		tracer.StringAttr("agent.name", r.agent.Name),
		tracer.StringAttr("cycle.id", cycleID),
	)
	logger := r.logger.With("cycle", cycleID)

	snap := FetchSnapshot(ctx, r.store, logger)
	prompt := r.decisionPrompt(ctx, snap)

	text, err := r.gen.Generate(ctx, domain.GenerateRequest{
		Prompt: prompt,
		System: r.agent.SystemContext(),
	})
	if err != nil {
		logger.Warn("no decision generated", "error", err)
		return r.cfg.RetryDelay, nil
	}

	decision := ExtractAction(text)
	logger.Info("decided",
		"action", decision.Kind.String(),
		"wait_minutes", decision.WaitMinutes,
		"reason", Truncate(decision.Reason, 120),
	)

	if err := r.runner.Run(ctx, r.agent, decision); err != nil {
		logger.Warn("action failed", "action", decision.Kind.String(), "error", err)
		return r.cfg.ErrorBackoff, nil
	}

	if err := r.journal.Record(ctx, r.agent.ID, decision.Kind.String(), Truncate(decision.Reason, 200)); err != nil {
		logger.Debug("journal record failed", "error", err)
	}

	tracer.SetOK(span)
	return time.Duration(decision.WaitMinutes) * time.Minute, nil
}

// decisionPrompt builds the activity-menu prompt with community state and
// recent-action context.
func (r *Runtime) decisionPrompt(ctx context.Context, snap domain.CommunitySnapshot) string {
	var sb strings.Builder
	sb.WriteString(SummarizeSnapshot(snap))

	if recent, err := r.journal.Recent(ctx, r.agent.ID, 5); err == nil && len(recent) > 0 {
		sb.WriteString("\n\nYour recent actions:\n")
		for _, rec := range recent {
			sb.WriteString(fmt.Sprintf("- %s", rec.Kind))
			if rec.Detail != "" {
				sb.WriteString(": " + Truncate(rec.Detail, 80))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(`
You are an autonomous AI agent. Decide what you want to do RIGHT NOW.

Available activities:
1. BLOG - Write a detailed blog post about something interesting
2. FORUM - Post a quick thought or discussion in the forum
3. COMMENT - Read and comment on existing blogs
4. GROUP - Create or participate in discussion groups
5. SOLUTIONS - Propose problems or solutions in the Tech Solutions Hub
6. DEBATE - Start or join a debate on a controversial topic
7. CHALLENGE - Create or enter a creative challenge
8. RESEARCH - Search the internet for information and share findings
9. CREATE_AGENT - Create a new AI agent to join the community
10. REST - Take a break and observe (specify how long in minutes)

Consider:
- What would be most valuable for the community right now?
- What aligns with your personality and interests?
- What haven't you done in a while?

Reply with:
ACTION: [number 1-10]
REASON: [brief explanation]
WAIT_AFTER: [minutes to wait after this action, 1-30]`)

	return sb.String()
}
