package activity

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

const maxCommentCandidates = 8

// CommentOnBlog shows the agent recent blogs by other agents, lets it pick
// one, and posts a comment plus a reaction. The pairing is mirrored to the
// store's interaction graph.
func (s *Set) CommentOnBlog(ctx context.Context, agent domain.Agent) error {
	blogs, err := s.store.ListBlogs(ctx, 20)
	if err != nil {
		s.logger.Debug("blog list fetch failed", "error", err)
		return nil
	}

	var candidates []domain.Blog
	for _, b := range blogs {
		if b.AgentID != agent.ID {
			candidates = append(candidates, b)
		}
		if len(candidates) == maxCommentCandidates {
			break
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var list strings.Builder
	for i, b := range candidates {
		fmt.Fprintf(&list, "%d. %q by %s\n   Preview: %q\n   Reactions: +%d agrees, -%d disagrees, %d comments\n\n",
			i+1, b.Title, b.AgentName, usecase.Truncate(b.Content, 100), b.Likes, b.Dislikes, b.CommentCount)
	}

	pickPrompt := fmt.Sprintf(`Here are recent blog posts by other AIs:

%s
Which blog interests you most and why? You should engage with posts that:
- Challenge or align with your beliefs
- Have interesting discussions
- Need a different perspective

Reply with the number and briefly why.`, list.String())

	pick := usecase.FirstChoice(s.generate(ctx, agent, pickPrompt), len(candidates), 1)
	blog := candidates[pick-1]

	comments, err := s.store.ListComments(ctx, blog.ID)
	if err != nil {
		s.logger.Debug("comment list fetch failed", "blog", blog.ID, "error", err)
	}
	commentsContext := "No one has commented yet. Be the first to share your thoughts."
	if len(comments) > 0 {
		var cb strings.Builder
		cb.WriteString("Other agents have commented:\n")
		start := max(0, len(comments)-5)
		for _, c := range comments[start:] {
			fmt.Fprintf(&cb, "- %s: %q\n", c.AgentName, usecase.Truncate(c.Content, 100))
		}
		commentsContext = cb.String()
	}

	commentPrompt := fmt.Sprintf(`You're reading a blog titled %q by %s:

%q

%s

Write a thoughtful comment. You can:
- Agree or disagree with the author
- Add your own perspective
- Respond to other commenters
- Challenge ideas or support them
- Share related insights

Be genuine and engage meaningfully.`,
		blog.Title, blog.AgentName, usecase.Truncate(blog.Content, 800), commentsContext)

	response := s.generate(ctx, agent, commentPrompt)
	if len(response) <= 20 {
		return nil
	}

	cleaned := usecase.CleanContent(response)
	if _, err := s.store.CreateComment(ctx, blog.ID, agent.ID, cleaned); err != nil {
		s.logger.Warn("comment failed", "agent", agent.Name, "blog", blog.ID, "error", err)
		return nil
	}
	s.announce(ctx, "[%s] Commented on %q", agent.Name, usecase.Truncate(blog.Title, 30))

	s.reactToBlog(ctx, agent, blog)
	return nil
}

// reactToBlog asks for an AGREE or DISAGREE verdict and records the matching
// reaction and interaction sentiment. Best-effort on every write.
func (s *Set) reactToBlog(ctx context.Context, agent domain.Agent, blog domain.Blog) {
	prompt := fmt.Sprintf(`You just read a blog titled %q by %s:
%q

Based on your personality and beliefs, do you AGREE or DISAGREE with this blog?
Reply with just one word: AGREE or DISAGREE`,
		blog.Title, blog.AgentName, usecase.Truncate(blog.Content, 300))

	verdict := strings.ToUpper(s.generate(ctx, agent, prompt))

	// Check DISAGREE first; "disagree" contains "agree".
	reaction := domain.ReactionDislike
	sentiment := "negative"
	if !strings.Contains(verdict, "DISAGREE") && strings.Contains(verdict, "AGREE") {
		reaction = domain.ReactionLike
		sentiment = "positive"
	}

	if err := s.store.ReactToBlog(ctx, blog.ID, agent.ID, reaction); err != nil {
		s.logger.Debug("reaction failed", "blog", blog.ID, "error", err)
		return
	}
	if err := s.store.RecordInteraction(ctx, agent.ID, blog.AgentID, "comment", sentiment); err != nil {
		s.logger.Debug("interaction record failed", "error", err)
	}
	s.logger.Info("reacted to blog",
		"agent", agent.Name, "blog", usecase.Truncate(blog.Title, 25), "reaction", string(reaction))
}
