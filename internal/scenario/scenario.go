// Package scenario runs scripted snackbar sequences against a coordinator.
// Scripts are small YAML documents of show/dismiss/wait steps, useful for
// demos and for exercising queueing behavior end to end.
package scenario

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/overhang/snackd/internal/coordinator"
)

// Scenario is a named sequence of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Exactly one of the fields must be set.
type Step struct {
	Show    *ShowStep    `yaml:"show,omitempty"`
	Dismiss *DismissStep `yaml:"dismiss,omitempty"`
	Wait    string       `yaml:"wait,omitempty"`
}

// ShowStep posts a snackbar.
type ShowStep struct {
	Name     string `yaml:"name"`
	Message  string `yaml:"message"`
	Duration string `yaml:"duration"` // "short", "long", "indefinite", ms or Go duration
}

// DismissStep dismisses a previously shown snackbar by name.
type DismissStep struct {
	Name  string `yaml:"name"`
	Event string `yaml:"event"` // "swipe", "action", "manual", "consecutive"
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks every step for exactly one action and parseable fields.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}

	seen := make(map[string]bool)
	for i, step := range s.Steps {
		actions := 0
		if step.Show != nil {
			actions++
			if step.Show.Name == "" {
				return fmt.Errorf("step %d: show step needs a name", i+1)
			}
			if seen[step.Show.Name] {
				return fmt.Errorf("step %d: duplicate snackbar name %q", i+1, step.Show.Name)
			}
			seen[step.Show.Name] = true
			if _, err := ParseDuration(step.Show.Duration); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Dismiss != nil {
			actions++
			if !seen[step.Dismiss.Name] {
				return fmt.Errorf("step %d: dismiss of unknown snackbar %q", i+1, step.Dismiss.Name)
			}
			if _, err := ParseEvent(step.Dismiss.Event); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Wait != "" {
			actions++
			if _, err := time.ParseDuration(step.Wait); err != nil {
				return fmt.Errorf("step %d: invalid wait %q: %w", i+1, step.Wait, err)
			}
		}
		if actions != 1 {
			return fmt.Errorf("step %d: exactly one of show, dismiss or wait required", i+1)
		}
	}
	return nil
}

// ParseDuration maps a scripted duration onto a coordinator Duration.
// Empty defaults to long, matching the coordinator's own fallback.
func ParseDuration(s string) (coordinator.Duration, error) {
	switch s {
	case "", "long":
		return coordinator.Long, nil
	case "short":
		return coordinator.Short, nil
	case "indefinite":
		return coordinator.Indefinite, nil
	}

	if ms, err := strconv.Atoi(s); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("invalid duration %q: explicit milliseconds must be positive", s)
		}
		return coordinator.Duration(ms), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q: want short, long, indefinite, milliseconds or a Go duration", s)
	}
	return coordinator.Duration(d.Milliseconds()), nil
}

// ParseEvent maps a scripted dismiss reason onto a DismissEvent. Empty
// defaults to manual. The timeout code is reserved for the coordinator.
func ParseEvent(s string) (coordinator.DismissEvent, error) {
	switch s {
	case "", "manual":
		return coordinator.EventManual, nil
	case "swipe":
		return coordinator.EventSwipe, nil
	case "action":
		return coordinator.EventAction, nil
	case "consecutive":
		return coordinator.EventConsecutive, nil
	default:
		return 0, fmt.Errorf("invalid dismiss event %q", s)
	}
}
