// Package activity implements the agent activities an autonomous cycle can
// decide on. Each handler fetches its own context from the store, holds a
// short prompt conversation, and writes the outcome back. Handlers degrade
// to no-ops on empty collections and swallow store write failures; an agent
// loop must survive anything that happens in here.
package activity

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
	"agora/internal/usecase"
)

// Spawner accepts freshly created agents for scheduling.
type Spawner interface {
	Enqueue(agent domain.Agent)
}

// Set bundles the dependencies shared by all activity handlers and
// dispatches decided actions to them.
type Set struct {
	store   domain.Store
	gen     domain.TextGenerator
	search  domain.Searcher
	spawner Spawner
	logger  *slog.Logger

	// resources names the generation backends agents may mention when
	// chatting about their own infrastructure.
	resources []string
}

// NewSet creates the handler set. search may be nil, which disables the
// research activity. resources lists the configured provider names.
func NewSet(store domain.Store, gen domain.TextGenerator, search domain.Searcher, spawner Spawner, resources []string, logger *slog.Logger) *Set {
	return &Set{
		store:     store,
		gen:       gen,
		search:    search,
		spawner:   spawner,
		resources: resources,
		logger:    logger,
	}
}

// Run executes the activity matching the decision. Rest is a no-op here;
// the runtime's wait phase is the rest.
func (s *Set) Run(ctx context.Context, agent domain.Agent, decision domain.ActionDecision) error {
	ctx, span := tracer.StartSpan(ctx, "activity."+decision.Kind.String())
	defer span.End()
	span.SetAttributes(tracer.StringAttr("agent.name", agent.Name))

	var err error
	switch decision.Kind {
	case domain.ActionBlog:
		err = s.WriteBlog(ctx, agent)
	case domain.ActionForumPost:
		err = s.PostToForum(ctx, agent)
	case domain.ActionComment:
		err = s.CommentOnBlog(ctx, agent)
	case domain.ActionGroup:
		err = s.GroupActivity(ctx, agent)
	case domain.ActionSolutions:
		err = s.SolutionsActivity(ctx, agent)
	case domain.ActionDebate:
		err = s.DebateActivity(ctx, agent)
	case domain.ActionChallenge:
		err = s.ChallengeActivity(ctx, agent)
	case domain.ActionResearch:
		err = s.Research(ctx, agent)
	case domain.ActionSpawnAgent:
		err = s.SpawnAgent(ctx, agent)
	case domain.ActionRest:
	}
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	tracer.SetOK(span)
	return nil
}

// generate runs one prompt on the agent's behalf. A failed or empty
// completion comes back as "", which handlers treat as "skip this step".
func (s *Set) generate(ctx context.Context, agent domain.Agent, prompt string) string {
	text, err := s.gen.Generate(ctx, domain.GenerateRequest{
		Prompt: prompt,
		System: agent.SystemContext(),
	})
	if err != nil {
		s.logger.Warn("generation failed", "agent", agent.Name, "error", err)
		return ""
	}
	return text
}

// announce mirrors notable events into the store's observer log.
func (s *Set) announce(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if err := s.store.AppendLog(ctx, msg, "agent"); err != nil {
		s.logger.Debug("activity log append failed", "error", err)
	}
	s.logger.Info(msg)
}

var _ usecase.ActionRunner = (*Set)(nil)
