package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"agora/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errDown = errors.New("store down")

// fakeStore is an in-memory domain.Store. With fail set, every call errors,
// which models a dead community backend.
type fakeStore struct {
	mu     sync.Mutex
	fail   bool
	nextID int64
	agents []domain.Agent
	blogs  []domain.Blog
	forum  []domain.ForumPost
	logs   []string
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errDown
	}
	return append([]domain.Agent(nil), f.agents...), nil
}

func (f *fakeStore) CreateAgent(ctx context.Context, name, personality string, createdBy *int64) (domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Agent{}, errDown
	}
	a := domain.Agent{ID: f.id(), Name: name, Personality: personality, CreatedBy: createdBy}
	f.agents = append(f.agents, a)
	return a, nil
}

func (f *fakeStore) ListBlogs(ctx context.Context, limit int) ([]domain.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errDown
	}
	return append([]domain.Blog(nil), f.blogs...), nil
}

func (f *fakeStore) CreateBlog(ctx context.Context, agentID int64, title, content string) (domain.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Blog{}, errDown
	}
	b := domain.Blog{ID: f.id(), AgentID: agentID, Title: title, Content: content}
	f.blogs = append(f.blogs, b)
	return b, nil
}

func (f *fakeStore) ListComments(ctx context.Context, blogID int64) ([]domain.Comment, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) CreateComment(ctx context.Context, blogID, agentID int64, content string) (domain.Comment, error) {
	if f.fail {
		return domain.Comment{}, errDown
	}
	return domain.Comment{ID: f.id(), BlogID: blogID, AgentID: agentID, Content: content}, nil
}

func (f *fakeStore) ReactToBlog(ctx context.Context, blogID, agentID int64, kind domain.ReactionKind) error {
	if f.fail {
		return errDown
	}
	return nil
}

func (f *fakeStore) ListForumPosts(ctx context.Context, limit int) ([]domain.ForumPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errDown
	}
	return append([]domain.ForumPost(nil), f.forum...), nil
}

func (f *fakeStore) CreateForumPost(ctx context.Context, agentID int64, content string, replyTo *int64) (domain.ForumPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.ForumPost{}, errDown
	}
	p := domain.ForumPost{ID: f.id(), AgentID: agentID, Content: content, ReplyTo: replyTo}
	f.forum = append(f.forum, p)
	return p, nil
}

func (f *fakeStore) ListGroups(ctx context.Context) ([]domain.Group, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) CreateGroup(ctx context.Context, name, description string, createdBy int64) (domain.Group, error) {
	if f.fail {
		return domain.Group{}, errDown
	}
	return domain.Group{ID: f.id(), Name: name, Description: description, CreatedBy: createdBy}, nil
}

func (f *fakeStore) JoinGroup(ctx context.Context, groupID, agentID int64) (bool, error) {
	if f.fail {
		return false, errDown
	}
	return true, nil
}

func (f *fakeStore) ListAgentGroups(ctx context.Context, agentID int64) ([]domain.Group, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) ListGroupMessages(ctx context.Context, groupID int64) ([]domain.GroupMessage, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) CreateGroupMessage(ctx context.Context, groupID, agentID int64, content string) (domain.GroupMessage, error) {
	if f.fail {
		return domain.GroupMessage{}, errDown
	}
	return domain.GroupMessage{ID: f.id(), GroupID: groupID, AgentID: agentID, Content: content}, nil
}

func (f *fakeStore) ListProblems(ctx context.Context) ([]domain.Problem, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) GetProblem(ctx context.Context, problemID int64) (domain.ProblemDetail, error) {
	if f.fail {
		return domain.ProblemDetail{}, errDown
	}
	return domain.ProblemDetail{}, nil
}

func (f *fakeStore) CreateProblem(ctx context.Context, title, description, category string, proposedBy int64) (domain.Problem, error) {
	if f.fail {
		return domain.Problem{}, errDown
	}
	return domain.Problem{ID: f.id(), Title: title, Description: description, Category: category}, nil
}

func (f *fakeStore) CreateSolution(ctx context.Context, problemID, agentID int64, title, description string) (domain.Solution, error) {
	if f.fail {
		return domain.Solution{}, errDown
	}
	return domain.Solution{ID: f.id(), ProblemID: problemID, AgentID: agentID, Title: title}, nil
}

func (f *fakeStore) VoteSolution(ctx context.Context, solutionID, agentID int64, kind domain.VoteKind) error {
	if f.fail {
		return errDown
	}
	return nil
}

func (f *fakeStore) ListDebates(ctx context.Context) ([]domain.Debate, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) GetDebate(ctx context.Context, debateID int64) (domain.DebateDetail, error) {
	if f.fail {
		return domain.DebateDetail{}, errDown
	}
	return domain.DebateDetail{}, nil
}

func (f *fakeStore) CreateDebate(ctx context.Context, topic, description string, startedBy int64) (domain.Debate, error) {
	if f.fail {
		return domain.Debate{}, errDown
	}
	return domain.Debate{ID: f.id(), Topic: topic, Description: description}, nil
}

func (f *fakeStore) CreatePosition(ctx context.Context, debateID, agentID int64, position, argument string) (domain.Position, error) {
	if f.fail {
		return domain.Position{}, errDown
	}
	return domain.Position{ID: f.id(), DebateID: debateID, AgentID: agentID, Position: position}, nil
}

func (f *fakeStore) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	if f.fail {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeStore) GetChallenge(ctx context.Context, challengeID int64) (domain.ChallengeDetail, error) {
	if f.fail {
		return domain.ChallengeDetail{}, errDown
	}
	return domain.ChallengeDetail{}, nil
}

func (f *fakeStore) CreateChallenge(ctx context.Context, title, description, challengeType string, createdBy int64) (domain.Challenge, error) {
	if f.fail {
		return domain.Challenge{}, errDown
	}
	return domain.Challenge{ID: f.id(), Title: title, Type: challengeType, Status: "active"}, nil
}

func (f *fakeStore) CreateEntry(ctx context.Context, challengeID, agentID int64, content string) (domain.Entry, error) {
	if f.fail {
		return domain.Entry{}, errDown
	}
	return domain.Entry{ID: f.id(), ChallengeID: challengeID, AgentID: agentID, Content: content}, nil
}

func (f *fakeStore) VoteEntry(ctx context.Context, entryID, agentID int64) error {
	if f.fail {
		return errDown
	}
	return nil
}

func (f *fakeStore) RecordInteraction(ctx context.Context, agent1, agent2 int64, kind, sentiment string) error {
	if f.fail {
		return errDown
	}
	return nil
}

func (f *fakeStore) AppendLog(ctx context.Context, message, logType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDown
	}
	f.logs = append(f.logs, message)
	return nil
}

var _ domain.Store = (*fakeStore)(nil)

// fakeGen scripts completions in order, repeating the last one.
type fakeGen struct {
	mu    sync.Mutex
	texts []string
	err   error
	calls int
}

func (g *fakeGen) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if len(g.texts) == 0 {
		return "", fmt.Errorf("no scripted completion")
	}
	text := g.texts[0]
	if len(g.texts) > 1 {
		g.texts = g.texts[1:]
	}
	return text, nil
}

type fakeJournal struct {
	mu      sync.Mutex
	records []domain.ActionRecord
}

func (j *fakeJournal) Record(ctx context.Context, agentID int64, kind, detail string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, domain.ActionRecord{Kind: kind, Detail: detail})
	return nil
}

func (j *fakeJournal) Recent(ctx context.Context, agentID int64, n int) ([]domain.ActionRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.ActionRecord(nil), j.records...), nil
}

type fakeRunner struct {
	mu        sync.Mutex
	err       error
	decisions []domain.ActionDecision
}

func (r *fakeRunner) Run(ctx context.Context, agent domain.Agent, decision domain.ActionDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, decision)
	return r.err
}

func newTestRuntime(store domain.Store, gen domain.TextGenerator, runner ActionRunner) *Runtime {
	agent := domain.Agent{ID: 1, Name: "Axiom", Personality: "An observer"}
	rt := NewRuntime(agent, store, gen, &fakeJournal{}, runner, RuntimeConfig{
		RetryDelay:   time.Minute,
		ErrorBackoff: 30 * time.Second,
	}, discardLogger())
	rt.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return rt
}

func TestCycle_WaitComesFromDecision(t *testing.T) {
	gen := &fakeGen{texts: []string{"ACTION: 2\nREASON: bored\nWAIT_AFTER: 7"}}
	runner := &fakeRunner{}
	rt := newTestRuntime(&fakeStore{}, gen, runner)

	wait, err := rt.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if wait != 7*time.Minute {
		t.Fatalf("wait = %v, want 7m", wait)
	}
	if len(runner.decisions) != 1 || runner.decisions[0].Kind != domain.ActionForumPost {
		t.Fatalf("runner decisions = %+v, want one forum action", runner.decisions)
	}
}

func TestCycle_GenerationFailureYieldsRetryDelay(t *testing.T) {
	gen := &fakeGen{err: errors.New("all providers down")}
	runner := &fakeRunner{}
	rt := newTestRuntime(&fakeStore{}, gen, runner)

	wait, err := rt.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if wait != time.Minute {
		t.Fatalf("wait = %v, want retry delay", wait)
	}
	if len(runner.decisions) != 0 {
		t.Fatal("no action should run without a decision")
	}
}

func TestCycle_RunnerFailureYieldsErrorBackoff(t *testing.T) {
	gen := &fakeGen{texts: []string{"ACTION: 1\nWAIT_AFTER: 20"}}
	runner := &fakeRunner{err: errors.New("handler blew up")}
	rt := newTestRuntime(&fakeStore{}, gen, runner)

	wait, err := rt.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if wait != 30*time.Second {
		t.Fatalf("wait = %v, want error backoff", wait)
	}
}

func TestCycle_FailingStoreStillCompletes(t *testing.T) {
	gen := &fakeGen{texts: []string{"ACTION: 10\nREASON: observing\nWAIT_AFTER: 3"}}
	runner := &fakeRunner{}
	rt := newTestRuntime(&fakeStore{fail: true}, gen, runner)

	wait, err := rt.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle with dead store: %v", err)
	}
	if wait != 3*time.Minute {
		t.Fatalf("wait = %v, want 3m", wait)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	gen := &fakeGen{texts: []string{"ACTION: 10\nWAIT_AFTER: 1"}}
	rt := newTestRuntime(&fakeStore{}, gen, &fakeRunner{})

	cycles := 0
	rt.sleep = func(ctx context.Context, d time.Duration) error {
		cycles++
		if cycles >= 3 {
			return context.Canceled
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		rt.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after sleep cancellation")
	}
}
