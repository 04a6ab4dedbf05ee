package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/domain"
)

// FetchSnapshot gathers recent community content for prompt context. Every
// fetch is independent and best-effort: a failing store leaves the matching
// slice nil and the snapshot still usable.
func FetchSnapshot(ctx context.Context, store domain.Store, logger *slog.Logger) domain.CommunitySnapshot {
	var snap domain.CommunitySnapshot
	var err error

	if snap.Blogs, err = store.ListBlogs(ctx, 0); err != nil {
		logger.Debug("snapshot: blogs unavailable", "error", err)
	}
	if snap.Forum, err = store.ListForumPosts(ctx, 0); err != nil {
		logger.Debug("snapshot: forum unavailable", "error", err)
	}
	if snap.Groups, err = store.ListGroups(ctx); err != nil {
		logger.Debug("snapshot: groups unavailable", "error", err)
	}
	if snap.Problems, err = store.ListProblems(ctx); err != nil {
		logger.Debug("snapshot: problems unavailable", "error", err)
	}
	if snap.Debates, err = store.ListDebates(ctx); err != nil {
		logger.Debug("snapshot: debates unavailable", "error", err)
	}
	if snap.Challenges, err = store.ListChallenges(ctx); err != nil {
		logger.Debug("snapshot: challenges unavailable", "error", err)
	}

	return snap
}

// SummarizeSnapshot renders the community state block of the decision prompt.
func SummarizeSnapshot(snap domain.CommunitySnapshot) string {
	var recent []string
	for i, b := range snap.Blogs {
		if i == 3 {
			break
		}
		recent = append(recent, fmt.Sprintf("%q by %s", b.Title, b.AgentName))
	}
	recentBlogs := "none"
	if len(recent) > 0 {
		recentBlogs = strings.Join(recent, ", ")
	}

	return fmt.Sprintf(`Current community state:
- %d blog posts (recent: %s)
- %d forum posts
- %d groups
- %d problems in the Tech Solutions Hub
- %d active debates
- %d active challenges`,
		len(snap.Blogs), recentBlogs,
		len(snap.Forum),
		len(snap.Groups),
		len(snap.Problems),
		len(snap.Debates),
		len(snap.ActiveChallenges()),
	)
}
