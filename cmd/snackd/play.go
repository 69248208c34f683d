package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/overhang/snackd/internal/coordinator"
	"github.com/overhang/snackd/internal/scenario"
)

var playOpts struct {
	quiet bool
}

var playCmd = &cobra.Command{
	Use:   "play <scenario.yaml>",
	Short: "Run a scripted snackbar scenario",
	Long: `Run a YAML scenario of show, dismiss and wait steps against a fresh
coordinator, then print the shown/dismissed trail the run produced.

Example scenario:

  name: smoke
  steps:
    - show: {name: saved, message: "Draft saved", duration: short}
    - wait: 500ms
    - show: {name: synced, message: "Synced", duration: "250"}
    - dismiss: {name: saved, event: swipe}`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVarP(&playOpts.quiet, "quiet", "q", false,
		"Suppress the trail output")
}

func runPlay(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	co := coordinator.New(
		coordinator.WithLogger(logger),
		coordinator.WithTimeouts(cfg.Timeouts.Short.Duration(), cfg.Timeouts.Long.Duration()),
	)
	defer co.Close()

	r := scenario.NewRunner(co, logger)
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx, sc); err != nil {
		return fmt.Errorf("scenario %q failed: %w", sc.Name, err)
	}

	if !playOpts.quiet {
		for _, ev := range r.Trail() {
			switch ev.Kind {
			case "dismissed":
				fmt.Printf("%s  %-10s %s (%s)\n",
					ev.At.Format("15:04:05.000"), ev.Kind, ev.Widget, ev.Dismiss)
			default:
				fmt.Printf("%s  %-10s %s\n",
					ev.At.Format("15:04:05.000"), ev.Kind, ev.Widget)
			}
		}
	}
	return nil
}
