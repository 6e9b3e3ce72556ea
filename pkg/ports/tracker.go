package ports

// RunStatus marks how a tracked run ended.
type RunStatus string

const (
	RunFinished RunStatus = "FINISHED"
	RunFailed   RunStatus = "FAILED"
	RunKilled   RunStatus = "KILLED"
)

// RunTracker records one simulation run for downstream analysis: scalar
// params, stepwise metrics, and JSON artifacts. The tracking collaborator
// appends to its own store; it never touches engine state.
type RunTracker interface {
	// LogParam records an immutable run parameter.
	LogParam(name, value string) error

	// LogMetric appends one (step, value) observation to a named series.
	LogMetric(name string, step int, value float64) error

	// LogArtifact stores a JSON document under the run's artifact directory.
	LogArtifact(name string, doc any) error

	// Close finalizes the run with a terminal status.
	Close(status RunStatus) error
}
