package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/overhang/snackd/internal/coordinator"
)

// Bridge posts coordinator-managed snackbars to the session notification
// daemon and folds daemon-side closes back into the coordinator. All bus
// I/O happens on a single op goroutine: the coordinator invokes the
// Show/Dismiss hooks under its own lock, so the hooks only enqueue work.
type Bridge struct {
	co      *coordinator.Coordinator
	logger  *slog.Logger
	appName string

	conn *dbus.Conn
	obj  dbus.BusObject

	mu   sync.Mutex
	byID map[uint32]*Notification

	opCh   chan func()
	sigCh  chan *dbus.Signal
	stopCh chan struct{}
	doneCh chan struct{}
}

// Notification is a snackbar mirrored onto the desktop daemon. It
// implements coordinator.Callback; both hooks hand the actual bus work to
// the bridge's op goroutine.
type Notification struct {
	bridge  *Bridge
	summary string
	body    string
	icon    string

	mu sync.Mutex
	id uint32 // daemon-assigned, 0 until Notify returns
}

// Show is called by the coordinator when the notification wins the slot.
func (n *Notification) Show() {
	n.bridge.enqueue(func() { n.bridge.post(n) })
}

// Dismiss is called by the coordinator when the notification must leave.
func (n *Notification) Dismiss(event coordinator.DismissEvent) {
	n.bridge.enqueue(func() { n.bridge.retract(n, event) })
}

// Summary returns the notification's summary line.
func (n *Notification) Summary() string {
	return n.summary
}

// NewBridge creates a bridge bound to the given coordinator.
func NewBridge(co *coordinator.Coordinator, appName string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		co:      co,
		logger:  logger,
		appName: appName,
		byID:    make(map[uint32]*Notification),
		opCh:    make(chan func(), 32),
		sigCh:   make(chan *dbus.Signal, 32),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start connects to the session bus and subscribes to NotificationClosed.
func (b *Bridge) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	b.conn = conn
	b.obj = conn.Object(busName, objectPath)

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(busName),
		dbus.WithMatchMember("NotificationClosed"),
	); err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", signalClosed, err)
	}
	conn.Signal(b.sigCh)

	go b.run()
	b.logger.Info("notification bridge started", "bus", busName)
	return nil
}

// Stop shuts down the op goroutine and closes the bus connection.
func (b *Bridge) Stop() {
	close(b.stopCh)
	<-b.doneCh
	if b.conn != nil {
		b.conn.Close()
	}
}

// Post hands a new notification to the coordinator. The bridge keeps the
// widget alive through the coordinator's record, so callers may drop the
// returned value.
func (b *Bridge) Post(summary, body string, d coordinator.Duration) *Notification {
	n := &Notification{
		bridge:  b,
		summary: summary,
		body:    body,
	}
	b.co.Show(d, coordinator.StrongRef(n))
	return n
}

// enqueue never blocks the caller: the hooks run under the coordinator
// lock, and the op goroutine needs that same lock for completion reports.
func (b *Bridge) enqueue(op func()) {
	select {
	case b.opCh <- op:
	default:
		go func() {
			select {
			case b.opCh <- op:
			case <-b.stopCh:
			}
		}()
	}
}

// run executes queued bus operations and daemon signals in arrival order.
func (b *Bridge) run() {
	defer close(b.doneCh)

	for {
		select {
		case op := <-b.opCh:
			op()
		case sig := <-b.sigCh:
			b.handleSignal(sig)
		case <-b.stopCh:
			return
		}
	}
}

// post sends the Notify call and reports the shown transition. The
// expire_timeout is always 0 so the daemon never races the coordinator's
// own timers.
func (b *Bridge) post(n *Notification) {
	call := b.obj.Call(methodNotify, 0,
		b.appName,
		uint32(0), // replaces_id
		n.icon,
		n.summary,
		n.body,
		[]string{},
		map[string]dbus.Variant{},
		int32(0), // expire_timeout: never, the coordinator owns timing
	)

	var id uint32
	if err := call.Store(&id); err != nil {
		b.logger.Warn("Notify call failed", "summary", n.summary, "error", err)
		// The slot would otherwise stay occupied forever.
		b.co.OnShown(n)
		b.co.Dismiss(n, coordinator.EventManual)
		return
	}

	n.mu.Lock()
	n.id = id
	n.mu.Unlock()

	b.mu.Lock()
	b.byID[id] = n
	b.mu.Unlock()

	b.logger.Debug("notification posted", "id", id, "summary", n.summary)
	b.co.OnShown(n)
}

// retract closes the daemon-side notification and reports the dismissed
// transition. Retracting one the daemon already closed is a no-op.
func (b *Bridge) retract(n *Notification, event coordinator.DismissEvent) {
	n.mu.Lock()
	id := n.id
	n.mu.Unlock()

	b.mu.Lock()
	_, live := b.byID[id]
	delete(b.byID, id)
	b.mu.Unlock()

	if id != 0 && live {
		if err := b.obj.Call(methodClose, 0, id).Err; err != nil {
			b.logger.Warn("CloseNotification failed", "id", id, "error", err)
		}
	}

	b.logger.Debug("notification retracted", "id", id, "event", event.String())
	b.co.OnDismissed(n)
}

// handleSignal folds a NotificationClosed signal back into the
// coordinator. Closes echoing the bridge's own CloseNotification are
// dropped; anything user- or daemon-initiated dismisses the widget.
func (b *Bridge) handleSignal(sig *dbus.Signal) {
	if sig.Name != signalClosed || len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}
	reason, ok := sig.Body[1].(uint32)
	if !ok {
		return
	}

	b.mu.Lock()
	n := b.byID[id]
	delete(b.byID, id)
	b.mu.Unlock()
	if n == nil {
		// Not ours, or already retracted.
		return
	}

	event, external := mapReason(CloseReason(reason))
	b.logger.Debug("daemon closed notification",
		"id", id, "reason", CloseReason(reason).String())

	if external {
		// Dismiss runs the widget's hook, which enqueues the retract op;
		// retract finds the id gone and only delivers the completion.
		b.co.Dismiss(n, event)
		return
	}
	b.co.OnDismissed(n)
}
