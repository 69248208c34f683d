package scenario

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/overhang/snackd/internal/coordinator"
)

// Event is one entry in the trail a run leaves behind.
type Event struct {
	At      time.Time
	Widget  string
	Kind    string // "shown" or "dismissed"
	Dismiss coordinator.DismissEvent
}

// ackKind distinguishes the two completion reports a widget owes.
type ackKind int

const (
	ackShown ackKind = iota
	ackDismissed
)

type ack struct {
	widget *scriptedWidget
	kind   ackKind
	event  coordinator.DismissEvent
}

// scriptedWidget is a headless snackbar stand-in. Its transitions complete
// on the runner's ack goroutine, which plays the role of the host UI loop.
type scriptedWidget struct {
	name   string
	runner *Runner
}

func (w *scriptedWidget) Show() {
	w.runner.enqueue(ack{widget: w, kind: ackShown})
}

func (w *scriptedWidget) Dismiss(event coordinator.DismissEvent) {
	w.runner.enqueue(ack{widget: w, kind: ackDismissed, event: event})
}

// Runner executes scenarios against a coordinator with scripted widgets.
type Runner struct {
	co     *coordinator.Coordinator
	logger *slog.Logger

	mu      sync.Mutex
	widgets map[string]*scriptedWidget
	trail   []Event
	pending atomic.Int64

	ackCh  chan ack
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRunner creates a Runner bound to the given coordinator.
func NewRunner(co *coordinator.Coordinator, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		co:      co,
		logger:  logger,
		widgets: make(map[string]*scriptedWidget),
		ackCh:   make(chan ack, 32),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go r.ackLoop()
	return r
}

// Close stops the ack goroutine. Call after Run has returned.
func (r *Runner) Close() {
	close(r.stopCh)
	<-r.doneCh
}

// Run executes the scenario's steps in order, then waits for the
// coordinator to drain. Dismissing a snackbar that already left the screen
// is a silent no-op, so scripts can be sloppy about timing.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	r.logger.Info("scenario starting", "name", sc.Name, "steps", len(sc.Steps))

	for i, step := range sc.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch {
		case step.Show != nil:
			d, err := ParseDuration(step.Show.Duration)
			if err != nil {
				return err
			}
			w := &scriptedWidget{name: step.Show.Name, runner: r}
			r.mu.Lock()
			r.widgets[w.name] = w
			r.mu.Unlock()
			r.co.Show(d, coordinator.StrongRef(w))
			r.logger.Debug("step show", "step", i+1, "name", w.name)

		case step.Dismiss != nil:
			ev, err := ParseEvent(step.Dismiss.Event)
			if err != nil {
				return err
			}
			r.mu.Lock()
			w := r.widgets[step.Dismiss.Name]
			r.mu.Unlock()
			if w != nil {
				r.co.Dismiss(w, ev)
			}
			r.logger.Debug("step dismiss", "step", i+1, "name", step.Dismiss.Name, "event", ev.String())

		case step.Wait != "":
			d, err := time.ParseDuration(step.Wait)
			if err != nil {
				return err
			}
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return r.drain(ctx)
}

// drain waits until nothing is showing and the queue is empty. Indefinite
// snackbars never drain on their own, so the caller's context bounds the
// wait.
func (r *Runner) drain(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !r.co.IsShowing() && r.co.QueuedCount() == 0 && r.pending.Load() == 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Trail returns the ordered shown/dismissed events the run produced.
func (r *Runner) Trail() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.trail))
	copy(out, r.trail)
	return out
}

// enqueue never blocks the caller: widget hooks run under the coordinator
// lock, and the ack loop needs that same lock to deliver reports.
func (r *Runner) enqueue(a ack) {
	r.pending.Add(1)
	select {
	case r.ackCh <- a:
	default:
		go func() {
			select {
			case r.ackCh <- a:
			case <-r.stopCh:
			}
		}()
	}
}

// ackLoop records trail events and delivers completion reports, standing
// in for the UI loop that would normally finish each transition.
func (r *Runner) ackLoop() {
	defer close(r.doneCh)

	for {
		select {
		case a := <-r.ackCh:
			switch a.kind {
			case ackShown:
				r.record(Event{At: time.Now(), Widget: a.widget.name, Kind: "shown"})
				r.co.OnShown(a.widget)
			case ackDismissed:
				r.record(Event{At: time.Now(), Widget: a.widget.name, Kind: "dismissed", Dismiss: a.event})
				r.co.OnDismissed(a.widget)
			}
			r.pending.Add(-1)
		case <-r.stopCh:
			return
		}
	}
}

func (r *Runner) record(ev Event) {
	r.mu.Lock()
	r.trail = append(r.trail, ev)
	r.mu.Unlock()
}
