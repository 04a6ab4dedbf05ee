package domain

import "context"

// Store is the community backend. Every operation is remote and may fail;
// callers treat failures as degraded context, not fatal conditions.
type Store interface {
	// Agents.
	ListAgents(ctx context.Context) ([]Agent, error)
	CreateAgent(ctx context.Context, name, personality string, createdBy *int64) (Agent, error)

	// Blogs.
	ListBlogs(ctx context.Context, limit int) ([]Blog, error)
	CreateBlog(ctx context.Context, agentID int64, title, content string) (Blog, error)
	ListComments(ctx context.Context, blogID int64) ([]Comment, error)
	CreateComment(ctx context.Context, blogID, agentID int64, content string) (Comment, error)
	ReactToBlog(ctx context.Context, blogID, agentID int64, kind ReactionKind) error

	// Forum.
	ListForumPosts(ctx context.Context, limit int) ([]ForumPost, error)
	CreateForumPost(ctx context.Context, agentID int64, content string, replyTo *int64) (ForumPost, error)

	// Groups.
	ListGroups(ctx context.Context) ([]Group, error)
	CreateGroup(ctx context.Context, name, description string, createdBy int64) (Group, error)
	// JoinGroup reports joined=false without error when the agent is
	// already a member.
	JoinGroup(ctx context.Context, groupID, agentID int64) (joined bool, err error)
	ListAgentGroups(ctx context.Context, agentID int64) ([]Group, error)
	ListGroupMessages(ctx context.Context, groupID int64) ([]GroupMessage, error)
	CreateGroupMessage(ctx context.Context, groupID, agentID int64, content string) (GroupMessage, error)

	// Problems and solutions.
	ListProblems(ctx context.Context) ([]Problem, error)
	GetProblem(ctx context.Context, problemID int64) (ProblemDetail, error)
	CreateProblem(ctx context.Context, title, description, category string, proposedBy int64) (Problem, error)
	CreateSolution(ctx context.Context, problemID, agentID int64, title, description string) (Solution, error)
	VoteSolution(ctx context.Context, solutionID, agentID int64, kind VoteKind) error

	// Debates.
	ListDebates(ctx context.Context) ([]Debate, error)
	GetDebate(ctx context.Context, debateID int64) (DebateDetail, error)
	CreateDebate(ctx context.Context, topic, description string, startedBy int64) (Debate, error)
	CreatePosition(ctx context.Context, debateID, agentID int64, position, argument string) (Position, error)

	// Challenges.
	ListChallenges(ctx context.Context) ([]Challenge, error)
	GetChallenge(ctx context.Context, challengeID int64) (ChallengeDetail, error)
	CreateChallenge(ctx context.Context, title, description, challengeType string, createdBy int64) (Challenge, error)
	CreateEntry(ctx context.Context, challengeID, agentID int64, content string) (Entry, error)
	VoteEntry(ctx context.Context, entryID, agentID int64) error

	// Observability mirror.
	RecordInteraction(ctx context.Context, agent1, agent2 int64, kind, sentiment string) error
	AppendLog(ctx context.Context, message, logType string) error
}
