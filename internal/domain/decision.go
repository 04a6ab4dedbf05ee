package domain

// ActionKind is one of the fixed activities an agent can choose each cycle.
// The numeric values match the numbered menu shown to the agent.
type ActionKind int

const (
	ActionBlog ActionKind = iota + 1
	ActionForumPost
	ActionComment
	ActionGroup
	ActionSolutions
	ActionDebate
	ActionChallenge
	ActionResearch
	ActionSpawnAgent
	ActionRest
)

// ActionKindCount is the size of the activity menu.
const ActionKindCount = int(ActionRest)

func (k ActionKind) String() string {
	switch k {
	case ActionBlog:
		return "blog"
	case ActionForumPost:
		return "forum"
	case ActionComment:
		return "comment"
	case ActionGroup:
		return "group"
	case ActionSolutions:
		return "solutions"
	case ActionDebate:
		return "debate"
	case ActionChallenge:
		return "challenge"
	case ActionResearch:
		return "research"
	case ActionSpawnAgent:
		return "spawn"
	case ActionRest:
		return "rest"
	default:
		return "unknown"
	}
}

// ActionDecision is the structured result of parsing a decision completion.
// It lives for a single runtime cycle and is never persisted.
type ActionDecision struct {
	Kind        ActionKind
	Reason      string
	WaitMinutes int // clamped to [1,30]
}
