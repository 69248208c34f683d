package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Severity selects the snackbar's color palette.
type Severity int

const (
	// SeverityInfo is the neutral palette.
	SeverityInfo Severity = iota
	// SeverityWarn is the warning palette.
	SeverityWarn
	// SeverityError is the error palette.
	SeverityError
)

// String returns the string representation of a Severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func styleFor(severity Severity) lipgloss.Style {
	switch severity {
	case SeverityWarn:
		return warnStyle
	case SeverityError:
		return errorStyle
	default:
		return infoStyle
	}
}

// renderBar draws one snackbar line. Transitions reveal and hide the bar
// by sliding it horizontally, one step per frame.
func renderBar(message string, severity Severity, phase Phase, frame int, width int) string {
	if width <= 0 {
		width = len(message) + 2
	}

	style := styleFor(severity).Width(width)
	full := style.Render(message)

	switch phase {
	case PhaseEntering:
		return slide(full, width, frame, enterFrames)
	case PhaseShowing:
		return full
	case PhaseLeaving:
		return slide(full, width, exitFrames-frame, exitFrames)
	default:
		return ""
	}
}

// slide offsets the rendered bar to fake a horizontal enter/exit motion.
func slide(rendered string, width, step, steps int) string {
	if steps <= 0 || step >= steps {
		return rendered
	}
	if step < 0 {
		step = 0
	}
	offset := width - width*step/steps
	return strings.Repeat(" ", offset) + rendered
}
