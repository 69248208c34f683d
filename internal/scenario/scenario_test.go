package scenario

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overhang/snackd/internal/coordinator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	doc := `
name: smoke
steps:
  - show: {name: first, message: "saved", duration: short}
  - wait: 10ms
  - show: {name: second, message: "synced", duration: "250"}
  - dismiss: {name: first, event: manual}
`
	sc, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, "first", sc.Steps[0].Show.Name)
	assert.Equal(t, "10ms", sc.Steps[1].Wait)
	assert.Equal(t, "first", sc.Steps[3].Dismiss.Name)
}

func TestParseRejectsBadScenarios(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no steps", "name: empty\nsteps: []\n"},
		{"unnamed show", "steps:\n  - show: {message: hi}\n"},
		{"duplicate name", "steps:\n  - show: {name: a}\n  - show: {name: a}\n"},
		{"dismiss unknown", "steps:\n  - dismiss: {name: ghost}\n"},
		{"bad duration", "steps:\n  - show: {name: a, duration: soon}\n"},
		{"bad event", "steps:\n  - show: {name: a}\n  - dismiss: {name: a, event: explode}\n"},
		{"bad wait", "steps:\n  - wait: whenever\n"},
		{"two actions in one step", "steps:\n  - show: {name: a}\n    wait: 1s\n"},
		{"not yaml", ":\n  -"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  coordinator.Duration
	}{
		{"", coordinator.Long},
		{"long", coordinator.Long},
		{"short", coordinator.Short},
		{"indefinite", coordinator.Indefinite},
		{"750", coordinator.Duration(750)},
		{"2s", coordinator.Duration(2000)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"soon", "-5", "0", "-1s"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseEvent(t *testing.T) {
	got, err := ParseEvent("")
	require.NoError(t, err)
	assert.Equal(t, coordinator.EventManual, got)

	got, err = ParseEvent("swipe")
	require.NoError(t, err)
	assert.Equal(t, coordinator.EventSwipe, got)

	_, err = ParseEvent("timeout")
	assert.Error(t, err, "the timeout code is reserved for the coordinator")
}

func TestRunnerSerializesShows(t *testing.T) {
	co := coordinator.New(coordinator.WithLogger(discardLogger()))
	t.Cleanup(co.Close)

	sc, err := Parse([]byte(`
name: queue drain
steps:
  - show: {name: a, message: one, duration: indefinite}
  - show: {name: b, message: two, duration: indefinite}
  - show: {name: c, message: three, duration: indefinite}
  - wait: 50ms
  - dismiss: {name: a, event: manual}
  - wait: 50ms
  - dismiss: {name: b, event: manual}
  - wait: 50ms
  - dismiss: {name: c, event: swipe}
`))
	require.NoError(t, err)

	r := NewRunner(co, discardLogger())
	t.Cleanup(r.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, sc))

	var shown []string
	for _, ev := range r.Trail() {
		if ev.Kind == "shown" {
			shown = append(shown, ev.Widget)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, shown, "queue must drain in arrival order")

	last := r.Trail()[len(r.Trail())-1]
	assert.Equal(t, "dismissed", last.Kind)
	assert.Equal(t, "c", last.Widget)
	assert.Equal(t, coordinator.EventSwipe, last.Dismiss)
}

func TestRunnerTimeoutsDrain(t *testing.T) {
	co := coordinator.New(
		coordinator.WithLogger(discardLogger()),
		coordinator.WithTimeouts(10*time.Millisecond, 20*time.Millisecond),
	)
	t.Cleanup(co.Close)

	sc, err := Parse([]byte(`
name: auto dismiss
steps:
  - show: {name: a, message: one, duration: short}
  - show: {name: b, message: two, duration: short}
`))
	require.NoError(t, err)

	r := NewRunner(co, discardLogger())
	t.Cleanup(r.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, sc))

	trail := r.Trail()
	require.Len(t, trail, 4)
	for _, ev := range trail {
		if ev.Kind == "dismissed" {
			assert.Equal(t, coordinator.EventTimeout, ev.Dismiss)
		}
	}
}
