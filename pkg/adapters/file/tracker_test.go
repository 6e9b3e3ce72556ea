package file_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spoolworks/spindle/pkg/adapters/file"
	"github.com/spoolworks/spindle/pkg/ports"
)

func fixedClock() func() time.Time {
	base := time.Unix(1700000000, 0)
	step := 0
	return func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
}

func TestTracker_Layout(t *testing.T) {
	base := t.TempDir()
	tracker, err := file.NewTracker(base, "run-1", file.WithTrackerClock(fixedClock()))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "run-1"), tracker.Dir())
	for _, sub := range []string{"params", "metrics", "artifacts"} {
		info, err := os.Stat(filepath.Join(tracker.Dir(), sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// meta.yaml starts RUNNING.
	meta := readMeta(t, tracker.Dir())
	assert.Equal(t, "run-1", meta["run_id"])
	assert.Equal(t, "RUNNING", meta["status"])
}

func TestTracker_ParamsMetricsArtifacts(t *testing.T) {
	tracker, err := file.NewTracker(t.TempDir(), "run-1", file.WithTrackerClock(fixedClock()))
	require.NoError(t, err)

	require.NoError(t, tracker.LogParam("storyworld_id", "demo"))
	data, err := os.ReadFile(filepath.Join(tracker.Dir(), "params", "storyworld_id"))
	require.NoError(t, err)
	assert.Equal(t, "demo", string(data))

	// Metrics append one "step value timestamp" line per observation.
	require.NoError(t, tracker.LogMetric("choices_made", 1, 2))
	require.NoError(t, tracker.LogMetric("choices_made", 2, 3.5))
	data, err = os.ReadFile(filepath.Join(tracker.Dir(), "metrics", "choices_made"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1 2 "))
	assert.True(t, strings.HasPrefix(lines[1], "2 3.5 "))

	require.NoError(t, tracker.LogArtifact("outcomes", map[string]any{"agent": "a1"}))
	data, err = os.ReadFile(filepath.Join(tracker.Dir(), "artifacts", "outcomes.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"agent": "a1"`)
}

func TestTracker_Close(t *testing.T) {
	tracker, err := file.NewTracker(t.TempDir(), "run-1", file.WithTrackerClock(fixedClock()))
	require.NoError(t, err)

	require.NoError(t, tracker.Close(ports.RunFinished))
	meta := readMeta(t, tracker.Dir())
	assert.Equal(t, "FINISHED", meta["status"])
	assert.NotZero(t, meta["end_time"])
}

func TestTracker_RejectsEscapingNames(t *testing.T) {
	tracker, err := file.NewTracker(t.TempDir(), "run-1")
	require.NoError(t, err)

	assert.Error(t, tracker.LogParam("../evil", "x"))
	assert.Error(t, tracker.LogMetric("a/b", 1, 1))
	assert.Error(t, tracker.LogArtifact("", nil))
}

func TestTracker_RequiresRunID(t *testing.T) {
	_, err := file.NewTracker(t.TempDir(), "")
	assert.Error(t, err)
}

func readMeta(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "meta.yaml"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, yaml.Unmarshal(data, &meta))
	return meta
}
