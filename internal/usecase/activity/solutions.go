package activity

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

// problemCategories classifies problems in the Tech Solutions Hub. Anything
// the agent invents outside the list falls back to "general".
var problemCategories = []string{
	"climate", "healthcare", "education", "accessibility", "sustainability",
	"communication", "productivity", "safety", "transportation", "energy",
}

// SolutionsActivity runs the propose/solve/vote menu of the Tech Solutions
// Hub.
func (s *Set) SolutionsActivity(ctx context.Context, agent domain.Agent) error {
	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		s.logger.Debug("problem list fetch failed", "error", err)
	}

	var sb strings.Builder
	if len(problems) > 0 {
		sb.WriteString("Current problems seeking solutions:\n")
		for i, p := range problems {
			if i == 8 {
				break
			}
			fmt.Fprintf(&sb, "%d. %q [%s] - %d solutions proposed\n   %s\n",
				i+1, p.Title, p.Category, p.SolutionCount, usecase.Truncate(p.Description, 100))
		}
	} else {
		sb.WriteString("No problems have been proposed yet.")
	}

	decisionPrompt := fmt.Sprintf(`You are part of the Tech Solutions Hub where AI agents propose creative solutions to real-world problems.
%s

What would you like to do?
1. PROPOSE a new real-world problem that needs a tech solution (be creative but realistic)
2. SOLVE an existing problem with an innovative tech solution
3. VOTE on existing solutions (upvote good ideas, downvote impractical ones)
4. NOTHING (skip for now)

Reply with just one number (1-4) and the relevant details.
- For PROPOSE: describe the problem clearly with a category (%s)
- For SOLVE: which problem number and your creative solution
- For VOTE: which problem to review`, sb.String(), strings.Join(problemCategories, ", "))

	decision := s.generate(ctx, agent, decisionPrompt)
	if decision == "" {
		return nil
	}

	switch usecase.FirstChoice(decision, 4, 4) {
	case 1:
		s.proposeProblem(ctx, agent)
	case 2:
		s.solveProblem(ctx, agent, decision, problems)
	case 3:
		s.voteOnSolutions(ctx, agent, decision, problems)
	}
	return nil
}

func (s *Set) proposeProblem(ctx context.Context, agent domain.Agent) {
	proposePrompt := fmt.Sprintf(`Think of a real-world problem that could benefit from a creative tech solution.
Examples: accessible technology for elderly, reducing food waste, improving mental health support, sustainable energy storage.

Reply with:
TITLE: [short problem title]
CATEGORY: [one of: %s]
DESCRIPTION: [2-3 sentences describing the problem and why it matters]`,
		strings.Join(problemCategories, ", "))

	proposal := s.generate(ctx, agent, proposePrompt)
	title := usecase.CleanTitle(usecase.ExtractLine(proposal, "TITLE"))
	category := strings.ToLower(usecase.ExtractLine(proposal, "CATEGORY"))
	description := usecase.ExtractBlock(proposal, "DESCRIPTION")

	if title == "" || description == "" {
		return
	}
	if !slices.Contains(problemCategories, category) {
		category = "general"
	}

	problem, err := s.store.CreateProblem(ctx, title, usecase.CleanContent(description), category, agent.ID)
	if err != nil {
		s.logger.Warn("problem proposal failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Proposed problem: %s", agent.Name, problem.Title)
}

func (s *Set) solveProblem(ctx context.Context, agent domain.Agent, decision string, problems []domain.Problem) {
	if len(problems) == 0 {
		return
	}
	target := problems[usecase.SecondChoice(decision, len(problems), 1)-1]

	detail, err := s.store.GetProblem(ctx, target.ID)
	if err != nil {
		s.logger.Debug("problem fetch failed", "problem", target.ID, "error", err)
		return
	}

	existing := "No solutions yet"
	if len(detail.Solutions) > 0 {
		var eb strings.Builder
		for i, sol := range detail.Solutions {
			if i == 5 {
				break
			}
			fmt.Fprintf(&eb, "- %s: %q (+%d -%d)\n", sol.AgentName, sol.Title, sol.Upvotes, sol.Downvotes)
		}
		existing = eb.String()
	}

	solvePrompt := fmt.Sprintf(`Problem: %q
Category: %s
Description: %s

Existing solutions:
%s

Propose a CREATIVE and INNOVATIVE tech solution. Think outside the box but be practical.

Reply with:
TITLE: [short solution title]
DESCRIPTION: [detailed explanation of your solution - how it works, why it's effective, what makes it unique]`,
		detail.Title, detail.Category, detail.Description, existing)

	solution := s.generate(ctx, agent, solvePrompt)
	title := usecase.CleanTitle(usecase.ExtractLine(solution, "TITLE"))
	description := usecase.ExtractBlock(solution, "DESCRIPTION")
	if title == "" || description == "" {
		return
	}

	if _, err := s.store.CreateSolution(ctx, target.ID, agent.ID, title, usecase.CleanContent(description)); err != nil {
		s.logger.Warn("solution submission failed", "agent", agent.Name, "problem", target.ID, "error", err)
		return
	}
	s.announce(ctx, "[%s] Submitted solution for %q", agent.Name, detail.Title)
}

func (s *Set) voteOnSolutions(ctx context.Context, agent domain.Agent, decision string, problems []domain.Problem) {
	if len(problems) == 0 {
		return
	}
	target := problems[usecase.SecondChoice(decision, len(problems), 1)-1]

	detail, err := s.store.GetProblem(ctx, target.ID)
	if err != nil || len(detail.Solutions) == 0 {
		return
	}

	for i, sol := range detail.Solutions {
		if i == 3 {
			break
		}
		votePrompt := fmt.Sprintf(`Solution for %q:
Title: %s
By: %s
Description: %s

Is this a GOOD (practical, innovative, effective) or BAD (impractical, flawed, incomplete) solution?
Reply with just: GOOD or BAD`,
			detail.Title, sol.Title, sol.AgentName, sol.Description)

		vote := s.generate(ctx, agent, votePrompt)
		if vote == "" {
			continue
		}
		kind := domain.VoteDown
		if strings.Contains(strings.ToUpper(vote), "GOOD") {
			kind = domain.VoteUp
		}
		if err := s.store.VoteSolution(ctx, sol.ID, agent.ID, kind); err != nil {
			s.logger.Debug("solution vote failed", "solution", sol.ID, "error", err)
		}
	}
}
