package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/overhang/snackd/internal/audio"
	"github.com/overhang/snackd/internal/config"
	"github.com/overhang/snackd/internal/coordinator"
	"github.com/overhang/snackd/internal/display"
	"github.com/overhang/snackd/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Launch the interactive snackbar demo",
	Long: `Launch the interactive terminal demo.

Key bindings:
  s           Show a short snackbar
  l           Show a long snackbar
  i           Show an indefinite snackbar
  e           Show a snackbar with an explicit 5s timeout
  d           Dismiss the visible snackbar
  x           Swipe the visible snackbar away
  a           Press the visible snackbar's action
  ?           Show help
  q           Quit`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	co := coordinator.New(
		coordinator.WithLogger(logger),
		coordinator.WithTimeouts(cfg.Timeouts.Short.Duration(), cfg.Timeouts.Long.Duration()),
	)
	defer co.Close()

	var player *audio.Player
	if cfg.Audio.Enabled {
		player = audio.NewPlayer(logger)
		player.SetVolume(float64(cfg.Audio.Volume) / 100)
		if err := player.Preload(cfg.Audio.Sound); err != nil {
			logger.Warn("failed to preload sound cue", "path", cfg.Audio.Sound, "error", err)
		}
		defer player.Close()
	}

	// Config edits retune the coordinator and the cue volume live.
	watcher, err := config.NewWatcher(globalOpts.configPath, cfg, logger)
	if err != nil {
		logger.Warn("config hot reload disabled", "error", err)
		watcher = nil
	} else {
		watcher.SetReloadCallback(func(next *config.Config) {
			co.SetTimeouts(next.Timeouts.Short.Duration(), next.Timeouts.Long.Duration())
			if player != nil {
				player.SetVolume(float64(next.Audio.Volume) / 100)
			}
		})
		if err := watcher.Start(); err != nil {
			logger.Warn("config hot reload disabled", "error", err)
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	current := func() *config.Config {
		if watcher != nil {
			return watcher.Current()
		}
		return cfg
	}

	m := tui.New(cfg, co)
	if player != nil {
		m.SetShownHook(func(*display.Bar) {
			if err := player.Play(current().Audio.Sound); err != nil {
				logger.Warn("sound cue failed", "error", err)
			}
		})
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("demo failed: %w", err)
	}
	return nil
}
