package http

import (
	"context"
	"sync"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// QueueDecider feeds externally submitted actions into the frame loop. API
// clients queue one or more actions per agent; each frame's collection
// phase pops at most one. Agents with an empty queue pass for that frame.
type QueueDecider struct {
	mu     sync.Mutex
	queues map[string][]ports.AgentAction
}

// NewQueueDecider creates an empty queue decider.
func NewQueueDecider() *QueueDecider {
	return &QueueDecider{queues: make(map[string][]ports.AgentAction)}
}

// Push appends an action to the agent's queue.
func (d *QueueDecider) Push(agentID string, action ports.AgentAction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queues[agentID] = append(d.queues[agentID], action)
}

// Pending reports how many actions are queued for the agent.
func (d *QueueDecider) Pending(agentID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues[agentID])
}

// Decide pops the agent's oldest queued action, or passes.
func (d *QueueDecider) Decide(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	queue := d.queues[agentID]
	if len(queue) == 0 {
		return nil, nil
	}
	action := queue[0]
	d.queues[agentID] = queue[1:]
	return &action, nil
}
