package coordinator

import "weak"

// Callback is the surface a snackbar widget exposes to the coordinator.
// Both hooks begin a transition; the widget reports completion back through
// OnShown and OnDismissed. They are invoked with the coordinator lock held,
// so implementations must return quickly and must not call back into the
// coordinator synchronously.
type Callback interface {
	// Show begins the widget's enter transition.
	Show()
	// Dismiss begins the widget's exit transition for the given reason.
	Dismiss(event DismissEvent)
}

// Ref is a non-owning, liveness-checkable handle to a widget's Callback.
// Get returns nil once the referent is gone. The coordinator never extends
// a widget's lifetime through a Ref.
type Ref interface {
	Get() Callback
}

// WeakRef wraps a widget in a garbage-collection-aware Ref. A widget that
// is only reachable through the coordinator's queue may be collected, at
// which point its record is silently dropped.
func WeakRef[T any, P interface {
	*T
	Callback
}](cb P) Ref {
	return weakRef[T]{p: weak.Make((*T)(cb))}
}

type weakRef[T any] struct {
	p weak.Pointer[T]
}

func (r weakRef[T]) Get() Callback {
	v := r.p.Value()
	if v == nil {
		return nil
	}
	cb, ok := any(v).(Callback)
	if !ok {
		return nil
	}
	return cb
}

// StrongRef pins the callback for as long as its record lives. Meant for
// hosts that control widget teardown themselves.
func StrongRef(cb Callback) Ref {
	return strongRef{cb: cb}
}

type strongRef struct {
	cb Callback
}

func (r strongRef) Get() Callback {
	return r.cb
}
