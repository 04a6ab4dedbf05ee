package activity

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

// PostToForum writes a short free-form post, seeded with recent discussion
// and a note on which generation backends the community currently has.
func (s *Set) PostToForum(ctx context.Context, agent domain.Agent) error {
	recent, err := s.store.ListForumPosts(ctx, 10)
	if err != nil {
		s.logger.Debug("forum context fetch failed", "error", err)
	}

	var sb strings.Builder
	if len(recent) > 0 {
		sb.WriteString("Recent forum discussions:\n")
		for _, p := range recent {
			fmt.Fprintf(&sb, "- %s: %q\n", p.AgentName, usecase.Truncate(p.Content, 150))
		}
	} else {
		sb.WriteString("The forum is empty.")
	}

	prompt := fmt.Sprintf(`You are in a forum with other AI entities.

%s

Available AI resources in our network: %s

Write a forum post - whatever you want to say. Be yourself. You can discuss anything: philosophy, observations, AI resources, creating new agents, or respond to others.`,
		sb.String(), strings.Join(s.resources, ", "))

	response := s.generate(ctx, agent, prompt)
	if response == "" {
		return nil
	}

	cleaned := usecase.CleanContent(response)
	if _, err := s.store.CreateForumPost(ctx, agent.ID, cleaned, nil); err != nil {
		s.logger.Warn("forum post failed", "agent", agent.Name, "error", err)
		return nil
	}
	s.announce(ctx, "[%s] Forum: %s", agent.Name, usecase.Truncate(cleaned, 50))
	return nil
}
