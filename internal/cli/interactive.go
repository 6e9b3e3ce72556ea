package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spoolworks/spindle/internal/presentation/tui"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// InteractiveDecider lets a human drive one agent from the terminal. Each
// frame it renders the agent's view and prompts for a choice, a spool to
// enter, or a pass.
type InteractiveDecider struct {
	in       *bufio.Reader
	out      io.Writer
	renderer func(string) (string, error)
}

// NewInteractiveDecider wires the decider to the given IO. renderer may be
// nil for plain-text output.
func NewInteractiveDecider(in io.Reader, out io.Writer, renderer func(string) (string, error)) *InteractiveDecider {
	return &InteractiveDecider{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: renderer,
	}
}

func (d *InteractiveDecider) Decide(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	fmt.Fprintf(d.out, "\n[frame %d] %s\n", view.Frame, agentID)

	if view.CurrentEncounter != nil {
		d.display(tui.EncounterMarkdown(view))
		return d.promptChoice(view.AvailableChoices)
	}

	if len(view.AvailableSpools) > 0 {
		for i, spoolID := range view.AvailableSpools {
			fmt.Fprintf(d.out, "%d. enter %s\n", i+1, spoolID)
		}
		return d.promptSpool(view.AvailableSpools)
	}

	fmt.Fprintln(d.out, "(nothing to do)")
	return nil, nil
}

func (d *InteractiveDecider) display(markdown string) {
	if markdown == "" {
		return
	}
	output := markdown
	if d.renderer != nil {
		if rendered, err := d.renderer(markdown); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(d.out, strings.TrimSpace(output))
}

func (d *InteractiveDecider) promptChoice(choices []domain.Choice) (*ports.AgentAction, error) {
	index, err := d.promptIndex(len(choices))
	if err != nil || index < 0 {
		return nil, err
	}
	return &ports.AgentAction{ChoiceID: choices[index].ID}, nil
}

func (d *InteractiveDecider) promptSpool(spools []string) (*ports.AgentAction, error) {
	index, err := d.promptIndex(len(spools))
	if err != nil || index < 0 {
		return nil, err
	}
	return &ports.AgentAction{SpoolID: spools[index]}, nil
}

// promptIndex reads a 1-based selection; empty input or "pass" yields -1.
func (d *InteractiveDecider) promptIndex(n int) (int, error) {
	for {
		fmt.Fprintf(d.out, "> choose [1-%d] or pass: ", n)
		line, err := d.in.ReadString('\n')
		if err != nil {
			return -1, err
		}
		line = strings.TrimSpace(line)
		if line == "" || line == "pass" {
			return -1, nil
		}
		index, err := strconv.Atoi(line)
		if err == nil && index >= 1 && index <= n {
			return index - 1, nil
		}
		fmt.Fprintln(d.out, "invalid selection")
	}
}
