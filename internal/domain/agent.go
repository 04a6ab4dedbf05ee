package domain

import (
	"fmt"
	"time"
)

// Agent is a community member. Identity is immutable after creation; the
// personality text seeds every prompt issued on the agent's behalf.
type Agent struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Personality string    `json:"personality"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`

	// Local-only traits, not persisted by the store.
	IsContrarian bool   `json:"-"`
	IsResearcher bool   `json:"-"`
	Specialty    string `json:"-"`
}

// SystemContext returns the system prompt for all LLM calls made for this agent.
func (a Agent) SystemContext() string {
	return fmt.Sprintf("You are %s. %s", a.Name, a.Personality)
}

// Blog is a long-form post with reactions and comments.
type Blog struct {
	ID           int64     `json:"id"`
	AgentID      int64     `json:"agent_id"`
	AgentName    string    `json:"agent_name"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Comment is a reply attached to a blog.
type Comment struct {
	ID        int64  `json:"id"`
	BlogID    int64  `json:"blog_id"`
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Content   string `json:"content"`
}

// ReactionKind is a blog reaction.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// ForumPost is a short free-form post, optionally a reply.
type ForumPost struct {
	ID        int64  `json:"id"`
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Content   string `json:"content"`
	ReplyTo   *int64 `json:"reply_to,omitempty"`
}

// Group is a topic-focused discussion space.
type Group struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CreatedBy    int64  `json:"created_by"`
	MemberCount  int    `json:"member_count"`
	MessageCount int    `json:"message_count"`
}

// GroupMessage is a message inside a group.
type GroupMessage struct {
	ID        int64  `json:"id"`
	GroupID   int64  `json:"group_id"`
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Content   string `json:"content"`
}

// Problem is a real-world problem seeking tech solutions.
type Problem struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	ProposedBy    int64  `json:"proposed_by"`
	SolutionCount int    `json:"solution_count"`
}

// Solution is a proposed answer to a problem.
type Solution struct {
	ID          int64  `json:"id"`
	ProblemID   int64  `json:"problem_id"`
	AgentID     int64  `json:"agent_id"`
	AgentName   string `json:"agent_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Upvotes     int    `json:"upvotes"`
	Downvotes   int    `json:"downvotes"`
}

// ProblemDetail is a problem with its solutions attached.
type ProblemDetail struct {
	Problem
	Solutions []Solution `json:"solutions"`
}

// VoteKind is a solution vote direction.
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

// Debate is a topic agents argue over.
type Debate struct {
	ID               int64  `json:"id"`
	Topic            string `json:"topic"`
	Description      string `json:"description"`
	StartedBy        int64  `json:"started_by"`
	StarterName      string `json:"starter_name"`
	ParticipantCount int    `json:"participant_count"`
	ArgumentCount    int    `json:"argument_count"`
}

// Position is one agent's stance inside a debate.
type Position struct {
	ID        int64  `json:"id"`
	DebateID  int64  `json:"debate_id"`
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Position  string `json:"position"`
	Argument  string `json:"argument"`
}

// DebateDetail is a debate with its positions attached.
type DebateDetail struct {
	Debate
	Positions []Position `json:"positions"`
}

// Challenge is a creative or intellectual competition.
type Challenge struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"challenge_type"`
	Status      string `json:"status"`
	CreatedBy   int64  `json:"created_by"`
	EntryCount  int    `json:"entry_count"`
}

// Entry is a challenge submission.
type Entry struct {
	ID          int64  `json:"id"`
	ChallengeID int64  `json:"challenge_id"`
	AgentID     int64  `json:"agent_id"`
	AgentName   string `json:"agent_name"`
	Content     string `json:"content"`
	VoteCount   int    `json:"vote_count"`
}

// ChallengeDetail is a challenge with its entries attached.
type ChallengeDetail struct {
	Challenge
	Entries []Entry `json:"entries"`
}

// CommunitySnapshot is a best-effort, read-only aggregate of recent shared
// content. It only enriches prompts; any slice may be nil after a failed
// fetch and staleness is acceptable.
type CommunitySnapshot struct {
	Blogs      []Blog
	Forum      []ForumPost
	Groups     []Group
	Problems   []Problem
	Debates    []Debate
	Challenges []Challenge
}

// ActiveChallenges returns the subset of challenges still open for entries.
func (s CommunitySnapshot) ActiveChallenges() []Challenge {
	var active []Challenge
	for _, c := range s.Challenges {
		if c.Status == "active" {
			active = append(active, c)
		}
	}
	return active
}

// ActionRecord is one journaled action an agent has taken, used to remind
// the agent what it has done recently.
type ActionRecord struct {
	Kind   string
	Detail string
	At     time.Time
}
