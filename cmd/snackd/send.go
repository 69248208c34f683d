package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/overhang/snackd/internal/coordinator"
	"github.com/overhang/snackd/internal/notify"
	"github.com/overhang/snackd/internal/scenario"
)

var sendOpts struct {
	body     string
	duration string
	appName  string
}

var sendCmd = &cobra.Command{
	Use:   "send <summary>",
	Short: "Mirror a snackbar onto the desktop notification daemon",
	Long: `Post a snackbar through the coordinator and mirror it onto the session
notification daemon via org.freedesktop.Notifications. The snackbar is
retracted when its timeout fires or when the daemon reports a close.

The notification is posted with expire_timeout 0, so the coordinator's
timers are the only thing that retires it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.body, "body", "b", "",
		"Notification body text")
	sendCmd.Flags().StringVarP(&sendOpts.duration, "duration", "d", "long",
		"Duration: short, long, indefinite, milliseconds or a Go duration")
	sendCmd.Flags().StringVar(&sendOpts.appName, "app-name", "snackd",
		"Application name reported to the daemon")
}

func runSend(cmd *cobra.Command, args []string) error {
	d, err := scenario.ParseDuration(sendOpts.duration)
	if err != nil {
		return err
	}

	co := coordinator.New(
		coordinator.WithLogger(logger),
		coordinator.WithTimeouts(cfg.Timeouts.Short.Duration(), cfg.Timeouts.Long.Duration()),
	)
	defer co.Close()

	bridge := notify.NewBridge(co, sendOpts.appName, logger)
	if err := bridge.Start(); err != nil {
		return err
	}
	defer bridge.Stop()

	bridge.Post(args[0], sendOpts.body, d)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for co.IsShowing() || co.QueuedCount() > 0 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
