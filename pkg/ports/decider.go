package ports

import (
	"context"

	"github.com/spoolworks/spindle/pkg/domain"
)

// AgentAction is the (optional) outcome of one decision callback. All
// fields are optional; an empty action is a pass.
type AgentAction struct {
	// ChoiceID selects a choice in the agent's current encounter.
	ChoiceID string `json:"choice_id,omitempty"`

	// SpoolID requests entry into one of the view's available spools.
	SpoolID string `json:"spool_id,omitempty"`

	// Message is emitted as a COMMUNICATION event; there is no direct
	// agent-to-agent delivery.
	Message string `json:"message,omitempty"`
}

// AgentDecider is the boundary to agent logic (scripted, human, or LLM).
// The engine bounds each call with a per-agent timeout; on error or timeout
// the agent simply has no effect for that frame.
type AgentDecider interface {
	Decide(ctx context.Context, agentID string, view domain.AgentView) (*AgentAction, error)
}

// DeciderFunc adapts a function to the AgentDecider interface.
type DeciderFunc func(ctx context.Context, agentID string, view domain.AgentView) (*AgentAction, error)

func (f DeciderFunc) Decide(ctx context.Context, agentID string, view domain.AgentView) (*AgentAction, error) {
	return f(ctx, agentID, view)
}
