package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spoolworks/spindle/pkg/ports"
)

// Tracker implements ports.RunTracker as a directory per run:
//
//	<base>/<runID>/meta.yaml          run metadata and terminal status
//	<base>/<runID>/params/<name>      one value per file
//	<base>/<runID>/metrics/<name>     append-only "step value timestamp" lines
//	<base>/<runID>/artifacts/<name>   JSON documents
//
// The layout matches what experiment-tracking importers expect, so finished
// runs can be synced into an external tracking server as-is.
type Tracker struct {
	runDir string
	meta   runMeta
	clock  func() time.Time
}

type runMeta struct {
	RunID     string `yaml:"run_id"`
	Status    string `yaml:"status"`
	StartTime int64  `yaml:"start_time"`
	EndTime   int64  `yaml:"end_time,omitempty"`
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerClock overrides the time source (tests).
func WithTrackerClock(clock func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewTracker creates the run directory skeleton and an initial meta.yaml
// with status RUNNING.
func NewTracker(basePath, runID string, opts ...TrackerOption) (*Tracker, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id cannot be empty")
	}
	t := &Tracker{
		runDir: filepath.Join(basePath, runID),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, sub := range []string{"params", "metrics", "artifacts"} {
		if err := os.MkdirAll(filepath.Join(t.runDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	t.meta = runMeta{
		RunID:     runID,
		Status:    "RUNNING",
		StartTime: t.clock().UnixMilli(),
	}
	if err := t.writeMeta(); err != nil {
		return nil, err
	}
	return t, nil
}

// Dir returns the run directory path.
func (t *Tracker) Dir() string { return t.runDir }

// LogParam writes one immutable parameter file.
func (t *Tracker) LogParam(name, value string) error {
	if err := validName(name); err != nil {
		return err
	}
	path := filepath.Join(t.runDir, "params", name)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write param %s: %w", name, err)
	}
	return nil
}

// LogMetric appends one observation line to the metric's series file.
func (t *Tracker) LogMetric(name string, step int, value float64) error {
	if err := validName(name); err != nil {
		return err
	}
	path := filepath.Join(t.runDir, "metrics", name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open metric %s: %w", name, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%d %g %d\n", step, value, t.clock().UnixMilli())
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append metric %s: %w", name, err)
	}
	return nil
}

// LogArtifact stores a JSON document under artifacts/.
func (t *Tracker) LogArtifact(name string, doc any) error {
	if err := validName(name); err != nil {
		return err
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", name, err)
	}
	path := filepath.Join(t.runDir, "artifacts", name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return nil
}

// Close finalizes meta.yaml with the terminal status and end time.
func (t *Tracker) Close(status ports.RunStatus) error {
	t.meta.Status = string(status)
	t.meta.EndTime = t.clock().UnixMilli()
	return t.writeMeta()
}

func (t *Tracker) writeMeta() error {
	data, err := yaml.Marshal(t.meta)
	if err != nil {
		return fmt.Errorf("failed to marshal run meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(t.runDir, "meta.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run meta: %w", err)
	}
	return nil
}

// validName rejects names that would escape the run directory.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid tracking name %q", name)
	}
	return nil
}
