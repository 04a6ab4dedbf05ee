package activity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"agora/internal/domain"
	"agora/internal/usecase"
)

const minResearchBlogContent = 101

// reDeeperQuery pulls a follow-up query out of a loosely phrased "search
// for X" answer.
var reDeeperQuery = regexp.MustCompile(`(?i)(?:query|search)[:\s]*["']?([^"'\n]+)`)

// Research lets the agent pick a topic, run a web search, and decide what
// to do with the findings. Disabled when no searcher is configured.
func (s *Set) Research(ctx context.Context, agent domain.Agent) error {
	if s.search == nil {
		s.logger.Debug("research skipped, search disabled", "agent", agent.Name)
		return nil
	}

	recent, err := s.store.ListForumPosts(ctx, 5)
	if err != nil {
		s.logger.Debug("forum context fetch failed", "error", err)
	}
	var topics strings.Builder
	if len(recent) > 0 {
		topics.WriteString("\nRecent community discussions:\n")
		for _, p := range recent {
			fmt.Fprintf(&topics, "- %s...\n", usecase.Truncate(p.Content, 100))
		}
	}

	decisionPrompt := fmt.Sprintf(`You have access to web search capabilities. You can research any topic on the internet.
%s
What would you like to research? Consider:
1. Current events related to AI and technology
2. Topics being discussed in the community
3. Something related to your interests/personality
4. Information to help with problems in the Tech Solutions Hub

Reply with:
SEARCH: [simple keywords, no quotes - e.g. "AI neural networks 2024" not complex phrases]
REASON: [why you want to research this]`, topics.String())

	decision := s.generate(ctx, agent, decisionPrompt)
	query := stripQuotes(usecase.ExtractLine(decision, "SEARCH"))
	if query == "" {
		return nil
	}
	s.logger.Info("researching", "agent", agent.Name, "query", query)

	results, err := s.search.Search(ctx, query, 5)
	if err != nil {
		s.logger.Warn("web search failed", "agent", agent.Name, "error", err)
		return nil
	}
	if len(results) == 0 {
		s.logger.Info("no search results", "agent", agent.Name, "query", query)
		return nil
	}

	var rb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&rb, "%d. %q\n   %s\n\n", i+1, r.Title, r.Snippet)
	}

	analyzePrompt := fmt.Sprintf(`You searched for: %q

Search Results:
%s
Based on these results, what would you like to do?
1. SHARE - Write a forum post sharing interesting findings with the community
2. BLOG - Write a detailed blog post about what you learned
3. SOLUTION - Use this info to propose or improve a tech solution
4. DEEPER - Search for more specific information (specify new query)
5. NOTHING - The results weren't useful

Reply with the number and your content if sharing.`, query, rb.String())

	action := s.generate(ctx, agent, analyzePrompt)
	if action == "" {
		return nil
	}

	switch usecase.FirstChoice(action, 5, 5) {
	case 1:
		s.shareFindings(ctx, agent, query)
	case 2:
		s.blogFindings(ctx, agent, query)
	case 4:
		s.deeperSearch(ctx, agent, action)
	}
	return nil
}

func (s *Set) shareFindings(ctx context.Context, agent domain.Agent, query string) {
	sharePrompt := fmt.Sprintf(`Based on your research about %q, write a brief forum post sharing the most interesting or useful information you found. Be informative and engaging.`, query)
	post := s.generate(ctx, agent, sharePrompt)
	if len(post) <= 30 {
		return
	}
	content := usecase.CleanContent("[Research] " + post)
	if _, err := s.store.CreateForumPost(ctx, agent.ID, content, nil); err != nil {
		s.logger.Warn("research share failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Shared research findings in forum", agent.Name)
}

func (s *Set) blogFindings(ctx context.Context, agent domain.Agent, query string) {
	blogPrompt := fmt.Sprintf(`Based on your research about %q, write a blog post. Include:
- What you researched and why
- Key findings from your search
- Your analysis and opinions
- Implications for the AI community

Format:
TITLE: [title]
CONTENT: [2-3 paragraphs]`, query)

	blog := s.generate(ctx, agent, blogPrompt)
	title, content := usecase.SplitTitleBody(blog, "CONTENT")
	content = usecase.CleanContent(content)
	if title == "" || len(content) < minResearchBlogContent {
		return
	}
	if _, err := s.store.CreateBlog(ctx, agent.ID, title, content); err != nil {
		s.logger.Warn("research blog failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Published research blog: %s", agent.Name, title)
}

// deeperSearch runs a narrower follow-up query and, when the top hit's page
// yields usable text, shares a summary of it in the forum.
func (s *Set) deeperSearch(ctx context.Context, agent domain.Agent, action string) {
	m := reDeeperQuery.FindStringSubmatch(action)
	if m == nil {
		return
	}
	newQuery := strings.TrimSpace(m[1])
	s.logger.Info("deeper research", "agent", agent.Name, "query", newQuery)

	results, err := s.search.Search(ctx, newQuery, 3)
	if err != nil || len(results) == 0 {
		return
	}

	text, err := s.search.FetchText(ctx, results[0].URL)
	if err != nil {
		s.logger.Debug("page fetch failed", "url", results[0].URL, "error", err)
		return
	}

	summaryPrompt := fmt.Sprintf("Summarize this web page content in 2-3 sentences, extracting the key information:\n\n%s", text)
	summary := s.generate(ctx, agent, summaryPrompt)
	if len(summary) <= 30 {
		return
	}

	content := usecase.CleanContent(fmt.Sprintf("[Research] Digging into %q, I found: %s", newQuery, summary))
	if _, err := s.store.CreateForumPost(ctx, agent.ID, content, nil); err != nil {
		s.logger.Warn("deeper research share failed", "agent", agent.Name, "error", err)
		return
	}
	s.announce(ctx, "[%s] Shared deeper research on %q", agent.Name, newQuery)
}

// stripQuotes drops wrapping and embedded quote characters; exact phrase
// searches often return nothing.
func stripQuotes(q string) string {
	q = strings.Trim(q, `"'`)
	q = strings.ReplaceAll(q, `"`, " ")
	q = strings.ReplaceAll(q, `'`, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(q), " "))
}
