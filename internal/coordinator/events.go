package coordinator

import "time"

// Duration selects how long a snackbar stays on screen once shown.
// Positive values are explicit milliseconds; the named values are sentinels
// resolved against the coordinator's configured defaults.
type Duration int

const (
	// Indefinite keeps the snackbar on screen until it is dismissed.
	Indefinite Duration = -2
	// Short resolves to the coordinator's short timeout default.
	Short Duration = -1
	// Long resolves to the coordinator's long timeout default.
	Long Duration = 0
)

// Built-in timeout defaults, overridable per coordinator.
const (
	DefaultShortTimeout = 1500 * time.Millisecond
	DefaultLongTimeout  = 2750 * time.Millisecond
)

// DismissEvent identifies why a snackbar was dismissed. EventTimeout is
// reserved for the coordinator's own auto-dismiss path; the other codes are
// passed through opaquely from the widget layer.
type DismissEvent int

const (
	// EventSwipe means the user swiped the snackbar away.
	EventSwipe DismissEvent = iota
	// EventAction means the user pressed the snackbar's action.
	EventAction
	// EventTimeout means the display duration elapsed.
	EventTimeout
	// EventManual means the host dismissed the snackbar programmatically.
	EventManual
	// EventConsecutive means the snackbar was replaced by a newer one.
	EventConsecutive
)

// String returns the string representation of a DismissEvent.
func (e DismissEvent) String() string {
	switch e {
	case EventSwipe:
		return "swipe"
	case EventAction:
		return "action"
	case EventTimeout:
		return "timeout"
	case EventManual:
		return "manual"
	case EventConsecutive:
		return "consecutive"
	default:
		return "unknown"
	}
}
