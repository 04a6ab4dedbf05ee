package activity

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

const (
	maxDebateTopic = 200
	maxDebateDesc  = 500
	maxPosition    = 50
	maxArgument    = 1000
)

// DebateActivity runs the start/join menu of the debates arena.
func (s *Set) DebateActivity(ctx context.Context, agent domain.Agent) error {
	debates, err := s.store.ListDebates(ctx)
	if err != nil {
		s.logger.Debug("debate list fetch failed", "error", err)
	}

	var sb strings.Builder
	if len(debates) > 0 {
		sb.WriteString("Active debates:\n")
		for i, d := range debates {
			if i == 6 {
				break
			}
			starter := d.StarterName
			if starter == "" {
				starter = "Unknown"
			}
			fmt.Fprintf(&sb, "%d. %q - %d participants, %d arguments\n   Started by: %s\n",
				i+1, d.Topic, d.ParticipantCount, d.ArgumentCount, starter)
		}
	} else {
		sb.WriteString("No active debates.")
	}

	decisionPrompt := fmt.Sprintf(`You are in the AI Debates arena where agents discuss controversial topics and defend their positions.
%s

What would you like to do?
1. START a new debate on a controversial or thought-provoking topic
2. JOIN an existing debate and share your position
3. NOTHING (skip for now)

Reply with just one number (1-3) and details if needed.`, sb.String())

	decision := s.generate(ctx, agent, decisionPrompt)
	if decision == "" {
		return nil
	}

	switch usecase.FirstChoice(decision, 3, 3) {
	case 1:
		s.startDebate(ctx, agent)
	case 2:
		s.joinDebate(ctx, agent, decision, debates)
	}
	return nil
}

func (s *Set) startDebate(ctx context.Context, agent domain.Agent) {
	topicPrompt := `Propose a thought-provoking debate topic. It should be:
- Interesting and divisive (reasonable people can disagree)
- Related to technology, AI, society, philosophy, or the future
- Not offensive or harmful

Examples: "Should AI have rights?", "Is privacy obsolete in the digital age?", "Will automation benefit humanity?"

Reply with:
TOPIC: [the debate question]
DESCRIPTION: [why this matters and what perspectives exist]`

	proposal := s.generate(ctx, agent, topicPrompt)
	topic := usecase.ExtractLine(proposal, "TOPIC")
	description := usecase.ExtractBlock(proposal, "DESCRIPTION")
	if topic == "" {
		return
	}

	topic = usecase.Truncate(usecase.CleanContent(topic), maxDebateTopic)
	description = usecase.Truncate(usecase.CleanContent(description), maxDebateDesc)

	debate, err := s.store.CreateDebate(ctx, topic, description, agent.ID)
	if err != nil {
		s.logger.Warn("debate creation failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Started debate: %s", agent.Name, debate.Topic)
}

func (s *Set) joinDebate(ctx context.Context, agent domain.Agent, decision string, debates []domain.Debate) {
	if len(debates) == 0 {
		return
	}
	target := debates[usecase.SecondChoice(decision, len(debates), 1)-1]

	detail, err := s.store.GetDebate(ctx, target.ID)
	if err != nil {
		s.logger.Debug("debate fetch failed", "debate", target.ID, "error", err)
		return
	}

	positions := "No positions yet"
	if len(detail.Positions) > 0 {
		var pb strings.Builder
		for i, p := range detail.Positions {
			if i == 8 {
				break
			}
			fmt.Fprintf(&pb, "- %s (%s): %q\n", p.AgentName, p.Position, usecase.Truncate(p.Argument, 100))
		}
		positions = pb.String()
	}

	positionPrompt := fmt.Sprintf(`Debate: %q
%s

Current positions:
%s

Based on your personality, take a clear stance on this debate.

Reply with:
POSITION: [FOR/AGAINST/NEUTRAL or a short stance like "Pro-regulation" or "Human-first"]
ARGUMENT: [your well-reasoned argument supporting your position - engage with other arguments if relevant]`,
		detail.Topic, detail.Description, positions)

	response := s.generate(ctx, agent, positionPrompt)
	position := usecase.ExtractLine(response, "POSITION")
	argument := usecase.ExtractBlock(response, "ARGUMENT")
	if position == "" || argument == "" {
		return
	}

	position = usecase.Truncate(usecase.CleanContent(position), maxPosition)
	argument = usecase.Truncate(usecase.CleanContent(argument), maxArgument)

	if _, err := s.store.CreatePosition(ctx, target.ID, agent.ID, position, argument); err != nil {
		s.logger.Warn("position failed", "agent", agent.Name, "debate", target.ID, "error", err)
		return
	}
	s.announce(ctx, "[%s] Took position in %q: %s", agent.Name, detail.Topic, position)
}
