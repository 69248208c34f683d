// Package tui provides the BubbleTea-based demo host for the snackbar
// coordinator. It plays the role of the external UI layer: it creates
// snackbar widgets, hands them to the coordinator and completes their
// transitions on its tick loop.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/overhang/snackd/internal/config"
	"github.com/overhang/snackd/internal/coordinator"
	"github.com/overhang/snackd/internal/display"
)

const tickInterval = 100 * time.Millisecond

// tickMsg drives snackbar transitions.
type tickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Model is the demo TUI model.
type Model struct {
	cfg  *config.Config
	co   *coordinator.Coordinator
	keys KeyMap
	help help.Model

	// All widgets that have not finished their lifecycle yet. The
	// coordinator keeps them serialized; this slice only keeps them alive
	// and ticking.
	bars    []*display.Bar
	counter int

	// Hook propagated to every new bar, e.g. a sound cue.
	shownHook func(*display.Bar)

	width  int
	height int
}

// New creates the demo model.
func New(cfg *config.Config, co *coordinator.Coordinator) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Model{
		cfg:  cfg,
		co:   co,
		keys: DefaultKeyMap(),
		help: help.New(),
	}
}

// SetShownHook registers a hook fired whenever a bar reaches the screen.
func (m *Model) SetShownHook(hook func(*display.Bar)) {
	m.shownHook = hook
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		for _, b := range m.bars {
			b.Tick()
		}
		alive := m.bars[:0]
		for _, b := range m.bars {
			if b.Phase() != display.PhaseGone {
				alive = append(alive, b)
			}
		}
		m.bars = alive
		return m, tick()

	case tea.BlurMsg:
		if m.cfg.Behavior.PauseWhenHidden {
			if b := m.current(); b != nil {
				m.co.CancelTimeout(b)
			}
		}
		return m, nil

	case tea.FocusMsg:
		if m.cfg.Behavior.PauseWhenHidden {
			if b := m.current(); b != nil {
				m.co.RestoreTimeout(b)
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.ShowShort):
			m.post(coordinator.Short, display.SeverityInfo, "short")
			return m, nil

		case key.Matches(msg, m.keys.ShowLong):
			m.post(coordinator.Long, display.SeverityWarn, "long")
			return m, nil

		case key.Matches(msg, m.keys.ShowIndefinite):
			m.post(coordinator.Indefinite, display.SeverityError, "indefinite")
			return m, nil

		case key.Matches(msg, m.keys.ShowExplicit):
			m.post(coordinator.Duration(5000), display.SeverityInfo, "5s")
			return m, nil

		case key.Matches(msg, m.keys.Dismiss):
			m.dismiss(coordinator.EventManual)
			return m, nil

		case key.Matches(msg, m.keys.Swipe):
			m.dismiss(coordinator.EventSwipe)
			return m, nil

		case key.Matches(msg, m.keys.Action):
			m.dismiss(coordinator.EventAction)
			return m, nil
		}
	}

	return m, nil
}

// post creates a new snackbar widget and hands it to the coordinator. The
// coordinator holds only a weak reference; the model's bars slice is what
// keeps the widget alive until its lifecycle completes.
func (m *Model) post(d coordinator.Duration, severity display.Severity, kind string) {
	m.counter++
	message := fmt.Sprintf("snackbar #%d (%s)", m.counter, kind)

	b := display.NewBar(m.co, message, severity)
	if m.shownHook != nil {
		b.SetShownHook(m.shownHook)
	}
	m.bars = append(m.bars, b)
	m.co.Show(d, coordinator.WeakRef(b))
}

// dismiss dismisses the currently visible snackbar, if any.
func (m *Model) dismiss(event coordinator.DismissEvent) {
	if b := m.current(); b != nil {
		m.co.Dismiss(b, event)
	}
}

// current returns the bar the coordinator considers visible, or nil.
func (m *Model) current() *display.Bar {
	for _, b := range m.bars {
		if m.co.IsCurrent(b) {
			return b
		}
	}
	return nil
}

// visible returns the bar that should be rendered right now, covering the
// enter and exit transitions as well as the fully shown state.
func (m *Model) visible() *display.Bar {
	for _, b := range m.bars {
		if b.Visible() {
			return b
		}
	}
	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	barWidth := width
	if m.cfg.Display.Width > 0 && m.cfg.Display.Width < width {
		barWidth = m.cfg.Display.Width
	}

	barLine := ""
	if b := m.visible(); b != nil {
		barLine = b.View(barWidth)
	}

	var body strings.Builder
	body.WriteString(titleStyle.Render("snackd demo"))
	body.WriteString("\n\n")
	body.WriteString(m.statusLine())
	body.WriteString("\n\n")
	body.WriteString(m.help.View(m.keys))

	if m.cfg.Display.Position == config.PositionBottom {
		return body.String() + "\n" + barLine
	}
	return barLine + "\n" + body.String()
}

// statusLine summarizes the coordinator's state.
func (m Model) statusLine() string {
	parts := []string{
		fmt.Sprintf("queued: %d", m.co.QueuedCount()),
	}

	if b := m.current(); b != nil {
		parts = append(parts, fmt.Sprintf("showing: %q", b.Message()))
		if !b.ShownAt().IsZero() {
			parts = append(parts, fmt.Sprintf("on screen %s", humanize.Time(b.ShownAt())))
		}
	} else {
		parts = append(parts, "showing: none")
	}

	return statusStyle.Render(strings.Join(parts, " · "))
}
