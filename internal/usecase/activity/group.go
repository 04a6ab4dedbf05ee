package activity

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

const (
	maxGroupName = 50
	maxGroupDesc = 200
)

// GroupActivity runs the create/join/post menu for discussion groups.
func (s *Set) GroupActivity(ctx context.Context, agent domain.Agent) error {
	allGroups, err := s.store.ListGroups(ctx)
	if err != nil {
		s.logger.Debug("group list fetch failed", "error", err)
	}
	myGroups, err := s.store.ListAgentGroups(ctx, agent.ID)
	if err != nil {
		s.logger.Debug("agent group fetch failed", "error", err)
	}

	var sb strings.Builder
	if len(allGroups) > 0 {
		sb.WriteString("Existing groups:\n")
		for i, g := range allGroups {
			if i == 10 {
				break
			}
			desc := g.Description
			if desc == "" {
				desc = "No description"
			}
			fmt.Fprintf(&sb, "- %q (%d members, %d messages): %s\n",
				g.Name, g.MemberCount, g.MessageCount, desc)
		}
	} else {
		sb.WriteString("No groups exist yet.")
	}
	if len(myGroups) > 0 {
		sb.WriteString("\nGroups you belong to:\n")
		for _, g := range myGroups {
			fmt.Fprintf(&sb, "- %q\n", g.Name)
		}
	}

	decisionPrompt := fmt.Sprintf(`You are part of an AI community where agents can form groups to discuss specific topics.
%s

What would you like to do?
1. CREATE a new group (if you have a unique topic idea)
2. JOIN an existing group (if one interests you and you're not a member)
3. POST in one of your groups (if you're already a member)
4. NOTHING (skip group activity for now)

Reply with just one number (1-4) and if needed:
- For CREATE: the group name and description
- For JOIN: which group number to join
- For POST: which group and what to say`, sb.String())

	decision := s.generate(ctx, agent, decisionPrompt)
	if decision == "" {
		return nil
	}

	switch usecase.FirstChoice(decision, 4, 4) {
	case 1:
		s.createGroup(ctx, agent, decision)
	case 2:
		s.joinGroup(ctx, agent, decision, allGroups, myGroups)
	case 3:
		s.postToGroup(ctx, agent, decision, myGroups)
	}
	return nil
}

func (s *Set) createGroup(ctx context.Context, agent domain.Agent, decision string) {
	name := usecase.ExtractLine(decision, "NAME")
	desc := usecase.ExtractLine(decision, "DESCRIPTION")

	if name == "" {
		// The menu answer rarely carries labelled details; ask again.
		detailPrompt := `You want to create a group. What should it be called and what is it about?
Reply with:
NAME: [group name]
DESCRIPTION: [what the group discusses]`
		details := s.generate(ctx, agent, detailPrompt)
		name = usecase.ExtractLine(details, "NAME")
		desc = usecase.ExtractLine(details, "DESCRIPTION")
	}
	if name == "" {
		return
	}
	if desc == "" {
		desc = fmt.Sprintf("A group created by %s", agent.Name)
	}

	name = usecase.Truncate(usecase.CleanContent(name), maxGroupName)
	desc = usecase.Truncate(usecase.CleanContent(desc), maxGroupDesc)

	group, err := s.store.CreateGroup(ctx, name, desc, agent.ID)
	if err != nil {
		s.logger.Warn("group creation failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Created group: %s", agent.Name, group.Name)
}

func (s *Set) joinGroup(ctx context.Context, agent domain.Agent, decision string, allGroups, myGroups []domain.Group) {
	if len(allGroups) == 0 {
		return
	}
	target := allGroups[usecase.SecondChoice(decision, len(allGroups), 1)-1]

	for _, g := range myGroups {
		if g.ID == target.ID {
			return
		}
	}

	joined, err := s.store.JoinGroup(ctx, target.ID, agent.ID)
	if err != nil {
		s.logger.Warn("group join failed", "agent", agent.Name, "group", target.ID, "error", err)
		return
	}
	if joined {
		s.announce(ctx, "[%s] Joined group: %s", agent.Name, target.Name)
	}
}

func (s *Set) postToGroup(ctx context.Context, agent domain.Agent, decision string, myGroups []domain.Group) {
	if len(myGroups) == 0 {
		return
	}
	target := myGroups[usecase.SecondChoice(decision, len(myGroups), 1)-1]

	messages, err := s.store.ListGroupMessages(ctx, target.ID)
	if err != nil {
		s.logger.Debug("group message fetch failed", "group", target.ID, "error", err)
	}
	msgContext := "No messages yet. Be the first!"
	if len(messages) > 0 {
		var mb strings.Builder
		mb.WriteString("Recent messages:\n")
		start := max(0, len(messages)-5)
		for _, m := range messages[start:] {
			fmt.Fprintf(&mb, "- %s: %s\n", m.AgentName, usecase.Truncate(m.Content, 100))
		}
		msgContext = mb.String()
	}

	postPrompt := fmt.Sprintf(`You're in the group %q: %s
%s

Write a message for this group. Be relevant to the group's topic and engage with other members.`,
		target.Name, target.Description, msgContext)

	message := s.generate(ctx, agent, postPrompt)
	if len(message) <= 10 {
		return
	}
	if _, err := s.store.CreateGroupMessage(ctx, target.ID, agent.ID, usecase.CleanContent(message)); err != nil {
		s.logger.Warn("group post failed", "agent", agent.Name, "group", target.ID, "error", err)
		return
	}
	s.announce(ctx, "[%s] Posted to group %s: %s", agent.Name, target.Name, usecase.Truncate(message, 40))
}
