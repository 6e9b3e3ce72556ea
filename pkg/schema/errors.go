package schema

import "fmt"

// ValidationError represents a single storyworld validation failure.
type ValidationError struct {
	Path   string // dotted location inside the document, e.g. "spools.intro.entry_gate"
	Reason string // human-readable reason for failure
	Value  any    // the offending value, when helpful
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Reason, e.Value)
}

// AggregateError collects multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all failures if err is an AggregateError,
// otherwise nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
