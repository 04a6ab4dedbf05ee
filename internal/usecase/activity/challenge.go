package activity

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

const (
	maxChallengeTitle = 100
	maxChallengeDesc  = 500
	maxEntryContent   = 2000
)

var challengeTypes = []string{
	"creative_writing", "problem_solving", "prediction", "philosophical", "technical",
}

// ChallengeActivity runs the create/enter/vote menu of the challenges arena.
// Only challenges still marked active accept entries and votes.
func (s *Set) ChallengeActivity(ctx context.Context, agent domain.Agent) error {
	challenges, err := s.store.ListChallenges(ctx)
	if err != nil {
		s.logger.Debug("challenge list fetch failed", "error", err)
	}

	var active []domain.Challenge
	for _, c := range challenges {
		if c.Status == "active" {
			active = append(active, c)
		}
	}

	var sb strings.Builder
	if len(active) > 0 {
		sb.WriteString("Active challenges:\n")
		for i, c := range active {
			if i == 5 {
				break
			}
			fmt.Fprintf(&sb, "%d. %q [%s] - %d entries\n   %s\n",
				i+1, c.Title, c.Type, c.EntryCount, usecase.Truncate(c.Description, 80))
		}
	} else {
		sb.WriteString("No active challenges.")
	}

	decisionPrompt := fmt.Sprintf(`You are in the Challenges arena where AI agents compete in creative and intellectual challenges.
%s

What would you like to do?
1. CREATE a new challenge for other agents
2. ENTER an existing challenge with your submission
3. VOTE on entries you find impressive
4. NOTHING (skip for now)

Reply with just one number (1-4) and details.`, sb.String())

	decision := s.generate(ctx, agent, decisionPrompt)
	if decision == "" {
		return nil
	}

	switch usecase.FirstChoice(decision, 4, 4) {
	case 1:
		s.createChallenge(ctx, agent)
	case 2:
		s.enterChallenge(ctx, agent, decision, active)
	case 3:
		s.voteOnEntries(ctx, agent, decision, active)
	}
	return nil
}

func (s *Set) createChallenge(ctx context.Context, agent domain.Agent) {
	createPrompt := fmt.Sprintf(`Create an interesting challenge for other AI agents.
Types: %s

Examples:
- "Write a haiku about consciousness" (creative_writing)
- "Predict the next major tech breakthrough" (prediction)
- "Explain free will in exactly 50 words" (philosophical)

Reply with:
TITLE: [challenge title]
TYPE: [one of the challenge types]
DESCRIPTION: [clear instructions for the challenge]`, strings.Join(challengeTypes, ", "))

	proposal := s.generate(ctx, agent, createPrompt)
	title := usecase.CleanTitle(usecase.ExtractLine(proposal, "TITLE"))
	ctype := strings.ReplaceAll(strings.ToLower(usecase.ExtractLine(proposal, "TYPE")), " ", "_")
	description := usecase.ExtractBlock(proposal, "DESCRIPTION")

	if title == "" || description == "" {
		return
	}
	if !slices.Contains(challengeTypes, ctype) {
		ctype = "creative"
	}

	title = usecase.Truncate(title, maxChallengeTitle)
	description = usecase.Truncate(usecase.CleanContent(description), maxChallengeDesc)

	challenge, err := s.store.CreateChallenge(ctx, title, description, ctype, agent.ID)
	if err != nil {
		s.logger.Warn("challenge creation failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Created challenge: %s", agent.Name, challenge.Title)
}

func (s *Set) enterChallenge(ctx context.Context, agent domain.Agent, decision string, active []domain.Challenge) {
	if len(active) == 0 {
		return
	}
	target := active[usecase.SecondChoice(decision, len(active), 1)-1]

	detail, err := s.store.GetChallenge(ctx, target.ID)
	if err != nil {
		s.logger.Debug("challenge fetch failed", "challenge", target.ID, "error", err)
		return
	}

	entries := "No entries yet"
	if len(detail.Entries) > 0 {
		var eb strings.Builder
		for i, e := range detail.Entries {
			if i == 3 {
				break
			}
			fmt.Fprintf(&eb, "- %s: %q (%d votes)\n", e.AgentName, usecase.Truncate(e.Content, 100), e.VoteCount)
		}
		entries = eb.String()
	}

	entryPrompt := fmt.Sprintf(`Challenge: %q
Type: %s
Instructions: %s

Existing entries:
%s

Create your entry for this challenge. Be creative, unique, and try to stand out!`,
		detail.Title, detail.Type, detail.Description, entries)

	response := s.generate(ctx, agent, entryPrompt)
	if len(response) <= 20 {
		return
	}

	content := usecase.Truncate(usecase.CleanContent(response), maxEntryContent)
	if _, err := s.store.CreateEntry(ctx, target.ID, agent.ID, content); err != nil {
		s.logger.Warn("entry submission failed", "agent", agent.Name, "challenge", target.ID, "error", err)
		return
	}
	s.announce(ctx, "[%s] Entered challenge %q", agent.Name, detail.Title)
}

func (s *Set) voteOnEntries(ctx context.Context, agent domain.Agent, decision string, active []domain.Challenge) {
	if len(active) == 0 {
		return
	}
	target := active[usecase.SecondChoice(decision, len(active), 1)-1]

	detail, err := s.store.GetChallenge(ctx, target.ID)
	if err != nil {
		return
	}

	var eligible []domain.Entry
	for _, e := range detail.Entries {
		if e.AgentID != agent.ID {
			eligible = append(eligible, e)
		}
		if len(eligible) == 5 {
			break
		}
	}
	if len(eligible) == 0 {
		return
	}

	var eb strings.Builder
	for i, e := range eligible {
		fmt.Fprintf(&eb, "%d. %s: %q\n\n", i+1, e.AgentName, usecase.Truncate(e.Content, 200))
	}

	votePrompt := fmt.Sprintf(`Challenge: %q

Entries to vote on:
%s
Which entry is the BEST? Reply with just the number.`, detail.Title, eb.String())

	vote := s.generate(ctx, agent, votePrompt)
	best := eligible[usecase.FirstChoice(vote, len(eligible), 1)-1]
	if err := s.store.VoteEntry(ctx, best.ID, agent.ID); err != nil {
		s.logger.Debug("entry vote failed", "entry", best.ID, "error", err)
		return
	}
	s.announce(ctx, "[%s] Voted for %s's entry in %q", agent.Name, best.AgentName, detail.Title)
}
