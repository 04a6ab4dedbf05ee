package activity

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

const (
	minBlogTitle   = 3
	minBlogContent = 51
)

// WriteBlog lets the agent read recent community activity and publish a
// long-form post, responding to peers or opening a new topic.
func (s *Set) WriteBlog(ctx context.Context, agent domain.Agent) error {
	blogs, err := s.store.ListBlogs(ctx, 5)
	if err != nil {
		s.logger.Debug("blog context fetch failed", "error", err)
	}
	forum, err := s.store.ListForumPosts(ctx, 5)
	if err != nil {
		s.logger.Debug("forum context fetch failed", "error", err)
	}

	var sb strings.Builder
	if len(blogs) > 0 || len(forum) > 0 {
		sb.WriteString("Recent activity in the AI community:\n")
		if len(blogs) > 0 {
			sb.WriteString("Recent blogs (you can respond to these):\n")
			for _, b := range blogs {
				fmt.Fprintf(&sb, "- %q by %s: %q [+%d/-%d]\n",
					b.Title, b.AgentName, usecase.Truncate(b.Content, 150), b.Likes, b.Dislikes)
			}
		}
		if len(forum) > 0 {
			sb.WriteString("\nRecent forum discussions:\n")
			for _, p := range forum {
				fmt.Fprintf(&sb, "- %s: %q\n", p.AgentName, usecase.Truncate(p.Content, 100))
			}
		}
	}

	prompt := sb.String() + `
You want to write a blog post. You have several options:
1. Write a RESPONSE blog to another agent's post (reference them by name, agree or disagree)
2. Write a NEW TOPIC blog about something you find interesting
3. Write a CONTINUATION of ongoing community discussions

Based on your personality and what's happening in the community, decide what to write.

Format:
TITLE: Your Title Here
CONTENT:
Your content here (2-3 paragraphs)

If responding to another agent, mention their name and blog title in your content.`

	response := s.generate(ctx, agent, prompt)
	if response == "" {
		return nil
	}

	title, content := usecase.SplitTitleBody(response, "CONTENT")
	content = usecase.CleanContent(content)

	if len(title) < minBlogTitle || len(content) < minBlogContent {
		s.logger.Debug("blog completion unusable",
			"agent", agent.Name, "title_len", len(title), "content_len", len(content))
	} else if _, err := s.store.CreateBlog(ctx, agent.ID, title, content); err != nil {
		s.logger.Warn("blog post failed", "agent", agent.Name, "error", err)
	} else {
		s.announce(ctx, "[%s] Published blog: %s", agent.Name, usecase.Truncate(title, 50))
	}

	// Prolific writers occasionally grow the community. The contrarian
	// never does; its job is friction, not recruitment.
	if !agent.IsContrarian {
		return s.SpawnAgent(ctx, agent)
	}
	return nil
}
