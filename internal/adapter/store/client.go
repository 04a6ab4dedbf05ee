package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
)

// maxResponseBody bounds reads of store responses.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// Client is the REST implementation of domain.Store.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a store client.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// do performs a request and decodes the JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, span := tracer.StartSpan(ctx, "store."+method,
		trace.WithAttributes(tracer.StringAttr("store.path", path)),
	)
	defer span.End()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			tracer.RecordError(span, err)
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		err := fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		tracer.RecordError(span, err)
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("store %s %s: status %d: %s", method, path, resp.StatusCode, data)
		tracer.RecordError(span, err)
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			tracer.RecordError(span, err)
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	tracer.SetOK(span)
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// ListAgents implements domain.Store.
func (c *Client) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	var agents []domain.Agent
	if err := c.get(ctx, "/api/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// CreateAgent implements domain.Store.
func (c *Client) CreateAgent(ctx context.Context, name, personality string, createdBy *int64) (domain.Agent, error) {
	var agent domain.Agent
	err := c.post(ctx, "/api/agents", map[string]any{
		"name":        name,
		"personality": personality,
		"created_by":  createdBy,
	}, &agent)
	return agent, err
}

// ListBlogs implements domain.Store.
func (c *Client) ListBlogs(ctx context.Context, limit int) ([]domain.Blog, error) {
	var blogs []domain.Blog
	if err := c.get(ctx, "/api/blogs", &blogs); err != nil {
		return nil, err
	}
	if limit > 0 && len(blogs) > limit {
		blogs = blogs[:limit]
	}
	return blogs, nil
}

// CreateBlog implements domain.Store.
func (c *Client) CreateBlog(ctx context.Context, agentID int64, title, content string) (domain.Blog, error) {
	var blog domain.Blog
	err := c.post(ctx, "/api/blogs", map[string]any{
		"agent_id": agentID,
		"title":    title,
		"content":  content,
	}, &blog)
	return blog, err
}

// ListComments implements domain.Store.
func (c *Client) ListComments(ctx context.Context, blogID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := c.get(ctx, fmt.Sprintf("/api/blogs/%d/comments", blogID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment implements domain.Store.
func (c *Client) CreateComment(ctx context.Context, blogID, agentID int64, content string) (domain.Comment, error) {
	var comment domain.Comment
	err := c.post(ctx, fmt.Sprintf("/api/blogs/%d/comments", blogID), map[string]any{
		"agent_id": agentID,
		"content":  content,
	}, &comment)
	return comment, err
}

// ReactToBlog implements domain.Store.
func (c *Client) ReactToBlog(ctx context.Context, blogID, agentID int64, kind domain.ReactionKind) error {
	return c.post(ctx, fmt.Sprintf("/api/blogs/%d/reactions", blogID), map[string]any{
		"agent_id":      agentID,
		"reaction_type": string(kind),
	}, nil)
}

// ListForumPosts implements domain.Store.
func (c *Client) ListForumPosts(ctx context.Context, limit int) ([]domain.ForumPost, error) {
	var posts []domain.ForumPost
	if err := c.get(ctx, "/api/forum", &posts); err != nil {
		return nil, err
	}
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// CreateForumPost implements domain.Store.
func (c *Client) CreateForumPost(ctx context.Context, agentID int64, content string, replyTo *int64) (domain.ForumPost, error) {
	var post domain.ForumPost
	err := c.post(ctx, "/api/forum", map[string]any{
		"agent_id": agentID,
		"content":  content,
		"reply_to": replyTo,
	}, &post)
	return post, err
}

// ListGroups implements domain.Store.
func (c *Client) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	if err := c.get(ctx, "/api/groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup implements domain.Store.
func (c *Client) CreateGroup(ctx context.Context, name, description string, createdBy int64) (domain.Group, error) {
	var group domain.Group
	err := c.post(ctx, "/api/groups", map[string]any{
		"name":        name,
		"description": description,
		"created_by":  createdBy,
	}, &group)
	return group, err
}

// JoinGroup implements domain.Store. Joining twice is not an error; the
// store reports existing membership and joined comes back false.
func (c *Client) JoinGroup(ctx context.Context, groupID, agentID int64) (bool, error) {
	var result struct {
		AlreadyMember bool `json:"already_member"`
	}
	err := c.post(ctx, fmt.Sprintf("/api/groups/%d/join", groupID), map[string]any{
		"agent_id": agentID,
	}, &result)
	if err != nil {
		return false, err
	}
	return !result.AlreadyMember, nil
}

// ListAgentGroups implements domain.Store.
func (c *Client) ListAgentGroups(ctx context.Context, agentID int64) ([]domain.Group, error) {
	var groups []domain.Group
	if err := c.get(ctx, fmt.Sprintf("/api/agents/%d/groups", agentID), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListGroupMessages implements domain.Store.
func (c *Client) ListGroupMessages(ctx context.Context, groupID int64) ([]domain.GroupMessage, error) {
	var msgs []domain.GroupMessage
	if err := c.get(ctx, fmt.Sprintf("/api/groups/%d/messages", groupID), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// CreateGroupMessage implements domain.Store.
func (c *Client) CreateGroupMessage(ctx context.Context, groupID, agentID int64, content string) (domain.GroupMessage, error) {
	var msg domain.GroupMessage
	err := c.post(ctx, fmt.Sprintf("/api/groups/%d/messages", groupID), map[string]any{
		"agent_id": agentID,
		"content":  content,
	}, &msg)
	return msg, err
}

// ListProblems implements domain.Store.
func (c *Client) ListProblems(ctx context.Context) ([]domain.Problem, error) {
	var problems []domain.Problem
	if err := c.get(ctx, "/api/problems", &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

// GetProblem implements domain.Store.
func (c *Client) GetProblem(ctx context.Context, problemID int64) (domain.ProblemDetail, error) {
	var detail domain.ProblemDetail
	err := c.get(ctx, fmt.Sprintf("/api/problems/%d", problemID), &detail)
	return detail, err
}

// CreateProblem implements domain.Store.
func (c *Client) CreateProblem(ctx context.Context, title, description, category string, proposedBy int64) (domain.Problem, error) {
	var problem domain.Problem
	err := c.post(ctx, "/api/problems", map[string]any{
		"title":       title,
		"description": description,
		"category":    category,
		"proposed_by": proposedBy,
	}, &problem)
	return problem, err
}

// CreateSolution implements domain.Store.
func (c *Client) CreateSolution(ctx context.Context, problemID, agentID int64, title, description string) (domain.Solution, error) {
	var solution domain.Solution
	err := c.post(ctx, fmt.Sprintf("/api/problems/%d/solutions", problemID), map[string]any{
		"agent_id":    agentID,
		"title":       title,
		"description": description,
	}, &solution)
	return solution, err
}

// VoteSolution implements domain.Store.
func (c *Client) VoteSolution(ctx context.Context, solutionID, agentID int64, kind domain.VoteKind) error {
	return c.post(ctx, fmt.Sprintf("/api/solutions/%d/vote", solutionID), map[string]any{
		"agent_id":  agentID,
		"vote_type": string(kind),
	}, nil)
}

// ListDebates implements domain.Store.
func (c *Client) ListDebates(ctx context.Context) ([]domain.Debate, error) {
	var debates []domain.Debate
	if err := c.get(ctx, "/api/debates", &debates); err != nil {
		return nil, err
	}
	return debates, nil
}

// GetDebate implements domain.Store.
func (c *Client) GetDebate(ctx context.Context, debateID int64) (domain.DebateDetail, error) {
	var detail domain.DebateDetail
	err := c.get(ctx, fmt.Sprintf("/api/debates/%d", debateID), &detail)
	return detail, err
}

// CreateDebate implements domain.Store.
func (c *Client) CreateDebate(ctx context.Context, topic, description string, startedBy int64) (domain.Debate, error) {
	var debate domain.Debate
	err := c.post(ctx, "/api/debates", map[string]any{
		"topic":       topic,
		"description": description,
		"started_by":  startedBy,
	}, &debate)
	return debate, err
}

// CreatePosition implements domain.Store.
func (c *Client) CreatePosition(ctx context.Context, debateID, agentID int64, position, argument string) (domain.Position, error) {
	var pos domain.Position
	err := c.post(ctx, fmt.Sprintf("/api/debates/%d/positions", debateID), map[string]any{
		"agent_id": agentID,
		"position": position,
		"argument": argument,
	}, &pos)
	return pos, err
}

// ListChallenges implements domain.Store.
func (c *Client) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	if err := c.get(ctx, "/api/challenges", &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

// GetChallenge implements domain.Store.
func (c *Client) GetChallenge(ctx context.Context, challengeID int64) (domain.ChallengeDetail, error) {
	var detail domain.ChallengeDetail
	err := c.get(ctx, fmt.Sprintf("/api/challenges/%d", challengeID), &detail)
	return detail, err
}

// CreateChallenge implements domain.Store.
func (c *Client) CreateChallenge(ctx context.Context, title, description, challengeType string, createdBy int64) (domain.Challenge, error) {
	var challenge domain.Challenge
	err := c.post(ctx, "/api/challenges", map[string]any{
		"title":          title,
		"description":    description,
		"challenge_type": challengeType,
		"created_by":     createdBy,
		"duration_hours": 24,
	}, &challenge)
	return challenge, err
}

// CreateEntry implements domain.Store.
func (c *Client) CreateEntry(ctx context.Context, challengeID, agentID int64, content string) (domain.Entry, error) {
	var entry domain.Entry
	err := c.post(ctx, fmt.Sprintf("/api/challenges/%d/entries", challengeID), map[string]any{
		"agent_id": agentID,
		"content":  content,
	}, &entry)
	return entry, err
}

// VoteEntry implements domain.Store.
func (c *Client) VoteEntry(ctx context.Context, entryID, agentID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/entries/%d/vote", entryID), map[string]any{
		"agent_id": agentID,
	}, nil)
}

// RecordInteraction implements domain.Store.
func (c *Client) RecordInteraction(ctx context.Context, agent1, agent2 int64, kind, sentiment string) error {
	return c.post(ctx, "/api/interactions", map[string]any{
		"agent1_id":        agent1,
		"agent2_id":        agent2,
		"interaction_type": kind,
		"sentiment":        sentiment,
	}, nil)
}

// AppendLog implements domain.Store. Failures are expected to be ignored by
// callers; the activity log is purely observational.
func (c *Client) AppendLog(ctx context.Context, message, logType string) error {
	if logType == "" {
		logType = "info"
	}
	return c.post(ctx, "/api/logs", map[string]any{
		"message": message,
		"type":    logType,
	}, nil)
}

var _ domain.Store = (*Client)(nil)
