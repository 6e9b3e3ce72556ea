// Package httpagent bridges the engine's decision boundary to an external
// agent service (typically an LLM wrapper) over HTTP.
package httpagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// decideRequest is the wire shape POSTed to the decide endpoint.
type decideRequest struct {
	AgentID string           `json:"agent_id"`
	View    domain.AgentView `json:"view"`
}

// decideResponse is the wire shape returned by the decide endpoint. All
// fields are optional; an empty body is a pass.
type decideResponse struct {
	ChoiceID string `json:"choice_id,omitempty"`
	SpoolID  string `json:"spool_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Decider implements ports.AgentDecider against a remote decide endpoint.
// The engine's per-agent timeout arrives through the request context; the
// client itself sets no additional deadline.
type Decider struct {
	endpoint string
	client   *http.Client
}

// Option configures a Decider.
type Option func(*Decider)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Decider) {
		if client != nil {
			d.client = client
		}
	}
}

// New creates a Decider targeting the given decide endpoint URL.
func New(endpoint string, opts ...Option) *Decider {
	d := &Decider{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decide POSTs the agent id and view, mapping the response to an action.
func (d *Decider) Decide(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	body, err := json.Marshal(decideRequest{AgentID: agentID, View: view})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decide request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build decide request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("decide request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("decide endpoint returned status %d", resp.StatusCode)
	}

	var decoded decideResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode decide response: %w", err)
	}

	if decoded.ChoiceID == "" && decoded.SpoolID == "" && decoded.Message == "" {
		return nil, nil
	}
	return &ports.AgentAction{
		ChoiceID: decoded.ChoiceID,
		SpoolID:  decoded.SpoolID,
		Message:  decoded.Message,
	}, nil
}
