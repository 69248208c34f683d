package coordinator

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWidget records the lifecycle hooks the coordinator invokes on it.
// Completion reports (OnShown/OnDismissed) are sent by the tests
// themselves, mirroring the asynchronous transition contract.
type fakeWidget struct {
	mu        sync.Mutex
	name      string
	shown     int
	dismissed []DismissEvent
	showLog   *showLog
}

func (w *fakeWidget) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shown++
	if w.showLog != nil {
		w.showLog.append(w.name)
	}
}

func (w *fakeWidget) Dismiss(event DismissEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dismissed = append(w.dismissed, event)
}

func (w *fakeWidget) shownCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shown
}

func (w *fakeWidget) dismissEvents() []DismissEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]DismissEvent, len(w.dismissed))
	copy(out, w.dismissed)
	return out
}

// showLog records the order in which widgets were shown.
type showLog struct {
	mu    sync.Mutex
	order []string
}

func (l *showLog) append(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

func (l *showLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// killableRef is a Ref whose referent can be released on demand, so tests
// don't have to depend on garbage collector timing.
type killableRef struct {
	mu sync.Mutex
	cb Callback
}

func (r *killableRef) Get() Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cb
}

func (r *killableRef) kill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cb = nil
}

func newTestCoordinator(t *testing.T, opts ...Option) *Coordinator {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	c := New(opts...)
	t.Cleanup(c.Close)
	return c
}

func TestShowImmediateWhenIdle(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}

	c.Show(Short, StrongRef(w))

	assert.Equal(t, 1, w.shownCount())
	assert.True(t, c.IsCurrent(w))
	assert.True(t, c.IsShowing())
	assert.Equal(t, 0, c.QueuedCount())
}

func TestShowQueuesBehindCurrent(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}

	c.Show(Short, StrongRef(w1))
	c.Show(Long, StrongRef(w2))

	assert.Equal(t, 1, w1.shownCount())
	assert.Equal(t, 0, w2.shownCount())
	assert.True(t, c.IsCurrent(w1))
	assert.False(t, c.IsCurrent(w2))
	assert.True(t, c.IsCurrentOrNext(w2))
	assert.Equal(t, 1, c.QueuedCount())
}

func TestDismissThenPromote(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}

	c.Show(Short, StrongRef(w1))
	c.OnShown(w1)
	c.Show(Long, StrongRef(w2))

	c.Dismiss(w1, EventManual)
	assert.Equal(t, []DismissEvent{EventManual}, w1.dismissEvents())
	assert.False(t, c.IsShowing())
	// Promotion waits for the exit transition to complete.
	assert.Equal(t, 0, w2.shownCount())

	c.OnDismissed(w1)
	assert.Equal(t, 1, w2.shownCount())
	assert.True(t, c.IsCurrent(w2))
	assert.False(t, c.IsCurrentOrNext(w1))
	assert.Equal(t, 0, c.QueuedCount())
}

func TestQueueDrainsInArrivalOrder(t *testing.T) {
	c := newTestCoordinator(t)
	log := &showLog{}

	first := &fakeWidget{name: "first", showLog: log}
	c.Show(Indefinite, StrongRef(first))
	c.OnShown(first)

	widgets := []*fakeWidget{
		{name: "a", showLog: log},
		{name: "b", showLog: log},
		{name: "c", showLog: log},
	}
	for _, w := range widgets {
		c.Show(Indefinite, StrongRef(w))
	}

	prev := first
	for _, w := range widgets {
		c.Dismiss(prev, EventManual)
		c.OnDismissed(prev)
		require.True(t, c.IsCurrent(w))
		prev = w
	}

	assert.Equal(t, []string{"first", "a", "b", "c"}, log.names())
}

func TestTimeoutResolution(t *testing.T) {
	c := newTestCoordinator(t)

	tests := []struct {
		name     string
		duration Duration
		want     time.Duration
	}{
		{"long sentinel", Long, DefaultLongTimeout},
		{"short sentinel", Short, DefaultShortTimeout},
		{"explicit milliseconds", Duration(4200), 4200 * time.Millisecond},
		{"unknown negative defaults to long", Duration(-5), DefaultLongTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.resolveTimeout(tt.duration))
		})
	}
}

func TestIndefiniteArmsNoTimeout(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}

	c.Show(Indefinite, StrongRef(w))
	c.OnShown(w)

	c.mu.Lock()
	rec := c.current
	c.mu.Unlock()
	require.NotNil(t, rec)
	assert.False(t, c.timers.armedFor(rec))
}

func TestExplicitTimeoutFires(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}

	c.Show(Duration(20), StrongRef(w))
	c.OnShown(w)

	require.Eventually(t, func() bool {
		evs := w.dismissEvents()
		return len(evs) == 1 && evs[0] == EventTimeout
	}, time.Second, 5*time.Millisecond)

	assert.False(t, c.IsShowing())
}

func TestConfiguredTimeoutDefaults(t *testing.T) {
	c := newTestCoordinator(t, WithTimeouts(15*time.Millisecond, 25*time.Millisecond))
	w := &fakeWidget{}

	c.Show(Short, StrongRef(w))
	c.OnShown(w)

	require.Eventually(t, func() bool {
		return len(w.dismissEvents()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, EventTimeout, w.dismissEvents()[0])
}

func TestCancelRestoreTimeout(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}

	c.Show(Duration(30), StrongRef(w))
	c.OnShown(w)
	c.CancelTimeout(w)

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, w.dismissEvents(), "cancelled timeout must not fire")

	// Restore re-arms with the record's original duration semantics.
	c.RestoreTimeout(w)
	require.Eventually(t, func() bool {
		evs := w.dismissEvents()
		return len(evs) == 1 && evs[0] == EventTimeout
	}, time.Second, 5*time.Millisecond)
}

func TestCancelTimeoutIgnoresNonCurrent(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}
	stranger := &fakeWidget{}

	c.Show(Duration(20), StrongRef(w))
	c.OnShown(w)
	c.CancelTimeout(stranger)
	c.RestoreTimeout(stranger)

	require.Eventually(t, func() bool {
		return len(w.dismissEvents()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDeadReferenceDroppedAtShow(t *testing.T) {
	c := newTestCoordinator(t)
	ref := &killableRef{cb: &fakeWidget{}}
	ref.kill()

	c.Show(Short, ref)

	assert.False(t, c.IsShowing())
	assert.Equal(t, 0, c.QueuedCount())
}

func TestDeadReferenceSkippedOnPromotion(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}
	w3 := &fakeWidget{}
	ref2 := &killableRef{cb: w2}

	c.Show(Indefinite, StrongRef(w1))
	c.OnShown(w1)
	c.Show(Short, ref2)
	c.Show(Short, StrongRef(w3))

	// w2's widget is destroyed while it waits in the queue.
	ref2.kill()

	c.Dismiss(w1, EventManual)
	c.OnDismissed(w1)

	assert.Equal(t, 0, w2.shownCount())
	assert.Equal(t, 1, w3.shownCount())
	assert.True(t, c.IsCurrent(w3))
	assert.Equal(t, 0, c.QueuedCount())
}

func TestDeadReferenceLeavesSlotEmpty(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}
	ref2 := &killableRef{cb: w2}

	c.Show(Indefinite, StrongRef(w1))
	c.OnShown(w1)
	c.Show(Short, ref2)
	ref2.kill()

	c.Dismiss(w1, EventManual)
	c.OnDismissed(w1)

	assert.False(t, c.IsShowing())
	assert.Equal(t, 0, c.QueuedCount())
}

func TestDismissQueuedWidget(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}

	c.Show(Indefinite, StrongRef(w1))
	c.OnShown(w1)
	c.Show(Short, StrongRef(w2))

	c.Dismiss(w2, EventSwipe)

	// The current widget is untouched.
	assert.True(t, c.IsCurrent(w1))
	assert.True(t, c.IsShowing())
	assert.Equal(t, []DismissEvent{EventSwipe}, w2.dismissEvents())
	assert.Equal(t, 0, c.QueuedCount())
	assert.False(t, c.IsCurrentOrNext(w2))
}

func TestDismissRemovesEveryQueuedMatch(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}

	c.Show(Indefinite, StrongRef(w1))
	c.OnShown(w1)
	c.Show(Short, StrongRef(w2))
	c.Show(Short, StrongRef(w2))
	require.Equal(t, 2, c.QueuedCount())

	c.Dismiss(w2, EventManual)

	assert.Equal(t, 0, c.QueuedCount())
	assert.Len(t, w2.dismissEvents(), 2)
}

func TestDismissUnknownWidgetIsNoop(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}
	stranger := &fakeWidget{}

	c.Show(Short, StrongRef(w))

	c.Dismiss(stranger, EventManual)
	c.Dismiss(stranger, EventManual)

	assert.Empty(t, stranger.dismissEvents())
	assert.True(t, c.IsCurrent(w))
	assert.True(t, c.IsShowing())
}

func TestStaleLifecycleReportsAreNoops(t *testing.T) {
	c := newTestCoordinator(t)
	w := &fakeWidget{}
	stranger := &fakeWidget{}

	c.Show(Indefinite, StrongRef(w))
	c.OnShown(stranger)
	c.OnDismissed(stranger)

	assert.True(t, c.IsCurrent(w))
	assert.True(t, c.IsShowing())

	// Completion report with an empty queue promotes nothing.
	c.Dismiss(w, EventManual)
	c.OnDismissed(w)
	c.OnDismissed(w)
	assert.False(t, c.IsShowing())
	assert.Equal(t, 0, c.QueuedCount())
}

func TestStaleCompletionDoesNotDoublePromote(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}
	w3 := &fakeWidget{}

	c.Show(Indefinite, StrongRef(w1))
	c.OnShown(w1)
	c.Show(Indefinite, StrongRef(w2))
	c.Show(Indefinite, StrongRef(w3))

	c.Dismiss(w1, EventManual)
	c.OnDismissed(w1)
	require.True(t, c.IsCurrent(w2))

	// A duplicate completion report for w1 must not promote w3 while w2
	// is still on screen.
	c.OnDismissed(w1)
	assert.True(t, c.IsCurrent(w2))
	assert.Equal(t, 0, w3.shownCount())
	assert.Equal(t, 1, c.QueuedCount())
}

// The visibility check and the enqueue-or-show decision happen under one
// lock acquisition. The design this reimplements read the flag outside any
// guard, letting two racing callers both claim the free slot; this test
// pins the corrected behavior.
func TestConcurrentShowsAdmitExactlyOne(t *testing.T) {
	c := newTestCoordinator(t)

	const n = 32
	widgets := make([]*fakeWidget, n)
	var wg sync.WaitGroup
	for i := range widgets {
		widgets[i] = &fakeWidget{name: fmt.Sprintf("w%d", i)}
		wg.Add(1)
		go func(w *fakeWidget) {
			defer wg.Done()
			c.Show(Indefinite, StrongRef(w))
		}(widgets[i])
	}
	wg.Wait()

	shown := 0
	for _, w := range widgets {
		shown += w.shownCount()
	}
	assert.Equal(t, 1, shown)
	assert.Equal(t, n-1, c.QueuedCount())
	assert.True(t, c.IsShowing())
}

func TestTimeoutPromotesNextAfterCompletion(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := &fakeWidget{}
	w2 := &fakeWidget{}

	c.Show(Duration(15), StrongRef(w1))
	c.OnShown(w1)
	c.Show(Short, StrongRef(w2))

	require.Eventually(t, func() bool {
		evs := w1.dismissEvents()
		return len(evs) == 1 && evs[0] == EventTimeout
	}, time.Second, 5*time.Millisecond)

	// The widget finishes its exit transition, which drains the queue.
	c.OnDismissed(w1)
	assert.Equal(t, 1, w2.shownCount())
	assert.True(t, c.IsCurrent(w2))
}

func TestSetTimeoutsAppliesToLaterRecords(t *testing.T) {
	c := newTestCoordinator(t)
	c.SetTimeouts(10*time.Millisecond, 20*time.Millisecond)

	assert.Equal(t, 10*time.Millisecond, c.resolveTimeout(Short))
	assert.Equal(t, 20*time.Millisecond, c.resolveTimeout(Long))

	// Non-positive values leave the defaults alone.
	c.SetTimeouts(0, -1)
	assert.Equal(t, 10*time.Millisecond, c.resolveTimeout(Short))
	assert.Equal(t, 20*time.Millisecond, c.resolveTimeout(Long))
}

// The scenario from the design contract: short then long, manual dismissal
// drains the queue in order.
func TestShowDismissShowScenario(t *testing.T) {
	c := newTestCoordinator(t)
	cb1 := &fakeWidget{}
	cb2 := &fakeWidget{}

	c.Show(Short, StrongRef(cb1))
	assert.Equal(t, 1, cb1.shownCount())
	assert.Equal(t, 0, c.QueuedCount())
	c.OnShown(cb1)

	c.Show(Long, StrongRef(cb2))
	assert.Equal(t, 0, cb2.shownCount())
	assert.True(t, c.IsCurrent(cb1))

	c.Dismiss(cb1, EventManual)
	c.OnDismissed(cb1)

	assert.Equal(t, 1, cb2.shownCount())
	assert.Equal(t, 0, c.QueuedCount())
	assert.False(t, c.IsCurrentOrNext(cb1))
}
