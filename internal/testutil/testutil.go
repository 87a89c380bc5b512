// Package testutil provides shared test helpers for creating config files and calendar fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/neuronest/internal/calendar"
)

// SetupTestConfig creates a minimal config file backed by a SQLite database inside tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return writeConfig(t, tmpDir, "")
}

// SetupTestConfigWithEvents also writes the given events and points the calendar at them.
func SetupTestConfigWithEvents(t *testing.T, tmpDir string, events []calendar.Event) string {
	t.Helper()
	eventsPath := WriteEventsFile(t, tmpDir, events)
	return writeConfig(t, tmpDir, fmt.Sprintf("calendar:\n  events_file: %s\n", eventsPath))
}

func writeConfig(t *testing.T, tmpDir string, extra string) string {
	t.Helper()

	configContent := fmt.Sprintf(`storage:
  driver: sqlite
  sqlite_path: %s
metrics:
  enabled: false
llm:
  provider: openai
%s`,
		filepath.Join(tmpDir, "neuronest.db"),
		extra,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// WriteEventsFile writes events in the calendar YAML layout and returns the file path.
func WriteEventsFile(t *testing.T, tmpDir string, events []calendar.Event) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("events:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "  - id: %q\n", e.ID)
		fmt.Fprintf(&b, "    title: %q\n", e.Title)
		fmt.Fprintf(&b, "    start: %s\n", e.Start.Format(time.RFC3339))
		if !e.End.IsZero() {
			fmt.Fprintf(&b, "    end: %s\n", e.End.Format(time.RFC3339))
		}
		if e.Notes != "" {
			fmt.Fprintf(&b, "    notes: %q\n", e.Notes)
		}
		if e.Location != "" {
			fmt.Fprintf(&b, "    location: %q\n", e.Location)
		}
	}

	path := filepath.Join(tmpDir, "events.yml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}
