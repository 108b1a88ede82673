package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kyleseneker/track/internal/watch"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var plain bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously show the tracking state",
		Long: `Polls the tracker and shows whether a session is active and for how
long. By default it renders a terminal view; --plain prints one line per
state change instead, which suits logs and pipes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if !cmd.Flags().Changed("interval") {
					interval = a.cfg.WatchInterval
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				poller := watch.NewPoller(a.tracker, interval, nil)
				if plain {
					poller.Run(ctx, watch.NewPlainPrinter(cmd.OutOrStdout()).Print)
					return nil
				}
				return runWatchView(ctx, poller)
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print state changes as plain lines instead of the terminal view.")
	cmd.Flags().DurationVar(&interval, "interval", watch.DefaultInterval, "How often to poll (default: watch_interval).")
	return cmd
}

func runWatchView(ctx context.Context, poller *watch.Poller) error {
	program := tea.NewProgram(watch.NewModel(nil), tea.WithContext(ctx))

	go poller.Run(ctx, func(st watch.Status) {
		program.Send(st)
	})
	defer poller.Shutdown()

	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal; not a failure.
		return nil
	}
	return err
}
