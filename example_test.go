package spindle_test

import (
	"context"
	"fmt"
	"log"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// ExampleNew demonstrates driving a small storyworld with an in-process
// decision callback. Real deployments usually swap the callback for an LLM
// bridge or the HTTP action queue; the engine cannot tell the difference.
func ExampleNew() {
	sw := &domain.Storyworld{
		ID:      "teahouse",
		Name:    "The Teahouse",
		Version: "1.0.0",
		Variables: []domain.Variable{
			{ID: "warmth", Type: domain.VarNumber, Scope: domain.ScopeGlobal, Default: float64(0)},
		},
		Spools: []domain.Spool{
			{ID: "visit", EntryEncounter: "doorway", Encounters: []string{"doorway"}},
		},
		Encounters: []domain.Encounter{
			{
				ID:      "doorway",
				SpoolID: "visit",
				Choices: []domain.Choice{
					{
						ID:        "enter",
						Text:      "Step inside",
						Mutations: []domain.VariableMutation{{Variable: "warmth", Op: domain.MutationAdd, Value: float64(2)}},
						Terminal:  true,
					},
					{ID: "pass_by", Text: "Keep walking", Terminal: true},
				},
			},
		},
	}

	// The decider sees only this agent's view: enter the spool when idle,
	// then take the first offered choice.
	decider := ports.DeciderFunc(func(_ context.Context, _ string, view domain.AgentView) (*ports.AgentAction, error) {
		if len(view.AvailableChoices) > 0 {
			return &ports.AgentAction{ChoiceID: view.AvailableChoices[0].ID}, nil
		}
		if len(view.AvailableSpools) > 0 {
			return &ports.AgentAction{SpoolID: view.AvailableSpools[0]}, nil
		}
		return nil, nil
	})

	sim, err := spindle.New(sw, []string{"visitor"}, decider, spindle.WithMaxFrames(3))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := sim.Start(ctx); err != nil {
		log.Fatal(err)
	}
	if err := sim.Run(ctx); err != nil {
		log.Fatal(err)
	}

	warmth, _ := sim.Variable("warmth")
	outcome := sim.SessionOutcomes()[0]
	fmt.Printf("status: %s\n", sim.Status())
	fmt.Printf("warmth: %v\n", warmth.Value)
	fmt.Printf("endings: %v\n", outcome.EndingsReached)
	// Output:
	// status: COMPLETED
	// warmth: 2
	// endings: [doorway]
}
