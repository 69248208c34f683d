// Package notify mirrors coordinator-managed snackbars onto the desktop
// notification daemon via org.freedesktop.Notifications.
package notify

import (
	"github.com/overhang/snackd/internal/coordinator"
)

// Notification interface and bus constants.
const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"

	methodNotify = busName + ".Notify"
	methodClose  = busName + ".CloseNotification"
	signalClosed = busName + ".NotificationClosed"
)

// CloseReason is the reason code carried by the NotificationClosed signal.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired on the daemon.
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates a CloseNotification call closed it.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined per the spec.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// mapReason translates a daemon close reason into a coordinator dismiss
// event, and reports whether the close originated outside the bridge. A
// CloseNotification echo is the bridge's own retraction coming back and
// must not start a second dismissal.
func mapReason(r CloseReason) (event coordinator.DismissEvent, external bool) {
	switch r {
	case CloseReasonExpired:
		// Snackbars are posted with expire_timeout 0, so the daemon should
		// never expire one on its own. Treat it as a timeout if it does.
		return coordinator.EventTimeout, true
	case CloseReasonDismissed:
		return coordinator.EventSwipe, true
	case CloseReasonClosed:
		return coordinator.EventManual, false
	default:
		return coordinator.EventManual, true
	}
}
