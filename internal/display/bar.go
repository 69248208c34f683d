package display

import (
	"sync"
	"time"

	"github.com/overhang/snackd/internal/coordinator"
)

// Phase is a snackbar widget's position in its lifecycle.
type Phase int

const (
	// PhaseIdle means the widget has been created but not yet shown.
	PhaseIdle Phase = iota
	// PhaseEntering means the enter transition is in progress.
	PhaseEntering
	// PhaseShowing means the widget is fully on screen.
	PhaseShowing
	// PhaseLeaving means the exit transition is in progress.
	PhaseLeaving
	// PhaseGone means the exit transition has completed.
	PhaseGone
)

// String returns the string representation of a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEntering:
		return "entering"
	case PhaseShowing:
		return "showing"
	case PhaseLeaving:
		return "leaving"
	case PhaseGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Transition lengths in host ticks.
const (
	enterFrames = 3
	exitFrames  = 2
)

// Bar is a single snackbar widget. It implements coordinator.Callback:
// Show and Dismiss only flip the phase, and the host's tick loop advances
// the transition and acknowledges completion back to the coordinator. That
// split keeps the Callback hooks cheap and free of coordinator re-entry.
type Bar struct {
	co *coordinator.Coordinator

	mu        sync.Mutex
	message   string
	severity  Severity
	phase     Phase
	frame     int
	lastEvent coordinator.DismissEvent
	shownAt   time.Time

	// onShown fires when the enter transition completes, e.g. to play a
	// sound cue.
	onShown func(*Bar)
}

// NewBar creates a snackbar widget bound to the given coordinator.
func NewBar(co *coordinator.Coordinator, message string, severity Severity) *Bar {
	return &Bar{
		co:       co,
		message:  message,
		severity: severity,
		phase:    PhaseIdle,
	}
}

// SetShownHook registers a hook invoked once the bar is fully on screen.
func (b *Bar) SetShownHook(hook func(*Bar)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onShown = hook
}

// Show begins the enter transition. Called by the coordinator.
func (b *Bar) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.phase = PhaseEntering
	b.frame = 0
}

// Dismiss begins the exit transition for the given reason. Called by the
// coordinator.
func (b *Bar) Dismiss(event coordinator.DismissEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastEvent = event
	if b.phase == PhaseIdle {
		// Dismissed while still queued: there is no exit transition to
		// run, but the coordinator still needs the completion report.
		b.phase = PhaseGone
		return
	}
	b.phase = PhaseLeaving
	b.frame = 0
}

// Tick advances the current transition by one host frame and reports
// completions to the coordinator. The host calls this on every tick
// message until Phase returns PhaseGone.
func (b *Bar) Tick() {
	b.mu.Lock()
	var done func()
	switch b.phase {
	case PhaseEntering:
		b.frame++
		if b.frame >= enterFrames {
			b.phase = PhaseShowing
			b.shownAt = time.Now()
			hook := b.onShown
			done = func() {
				b.co.OnShown(b)
				if hook != nil {
					hook(b)
				}
			}
		}
	case PhaseLeaving:
		b.frame++
		if b.frame >= exitFrames {
			b.phase = PhaseGone
			done = func() { b.co.OnDismissed(b) }
		}
	case PhaseGone:
		if b.frame == 0 {
			// Dismissed straight from the queue.
			b.frame = 1
			done = func() { b.co.OnDismissed(b) }
		}
	}
	b.mu.Unlock()

	// Completion reports go out without holding the bar's lock, since the
	// coordinator will synchronously call back into the next widget.
	if done != nil {
		done()
	}
}

// Phase returns the widget's current lifecycle phase.
func (b *Bar) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Message returns the snackbar text.
func (b *Bar) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// Severity returns the snackbar severity.
func (b *Bar) Severity() Severity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.severity
}

// ShownAt returns when the enter transition completed, or the zero time.
func (b *Bar) ShownAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shownAt
}

// LastEvent returns the most recent dismissal reason.
func (b *Bar) LastEvent() coordinator.DismissEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastEvent
}

// Visible reports whether the bar should currently be rendered.
func (b *Bar) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase == PhaseEntering || b.phase == PhaseShowing || b.phase == PhaseLeaving
}

// View renders the bar at the given terminal width.
func (b *Bar) View(width int) string {
	b.mu.Lock()
	message := b.message
	severity := b.severity
	phase := b.phase
	frame := b.frame
	b.mu.Unlock()

	return renderBar(message, severity, phase, frame, width)
}
