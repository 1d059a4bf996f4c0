package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			out = append(out, entry)
		}
	}
	return out
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.Debug("hidden")
	l.Info("shown", String("track", "oval"), Float64("lap", 12.5))

	entries := lines(&buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "oval", entries[0]["track"])
	assert.InDelta(t, 12.5, entries[0]["lap"], 1e-12)

	l.SetLevel(DebugLevel)
	l.Debug("now visible")
	assert.Len(t, lines(&buf), 2)
}

func TestNamedAndFilter(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, DebugLevel)
	filtered, err := base.WithFilter("info+:* debug:optimizer")
	require.NoError(t, err)

	filtered.Named("optimizer").Debug("iteration")
	filtered.Named("simulate").Debug("dropped")
	filtered.Named("simulate").Info("kept")

	entries := lines(&buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "optimizer", entries[0]["logger"])
	assert.Equal(t, "kept", entries[1]["msg"])

	_, err = base.WithFilter("loud:optimizer")
	assert.Error(t, err)
}

func TestResetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { ResetDefault(prev) })

	var buf bytes.Buffer
	ResetDefault(New(&buf, DebugLevel))
	Debug("via package", Int("points", 100))

	entries := lines(&buf)
	require.Len(t, entries, 1)
	assert.InDelta(t, 100, entries[0]["points"], 0)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
