package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kyleseneker/track/internal/report"
	"github.com/kyleseneker/track/internal/tracker"
)

func newStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a tracking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				start, err := a.tracker.Start()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tracking started at %s\n", start.Local().Format(displayTime))
				return nil
			})
		},
	}
}

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session and record it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				res, err := a.tracker.Stop()
				if err != nil {
					return err
				}
				if res.AlreadyRecorded {
					fmt.Fprintln(cmd.ErrOrStderr(), "note: this session was already recorded by an interrupted stop; only its lock was removed")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tracking stopped at %s\n", res.End.Local().Format(displayTime))
				return nil
			})
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				start, err := a.tracker.Running()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if start == nil {
					fmt.Fprintln(out, "not tracking")
					return nil
				}
				elapsed := time.Since(start.Time())
				fmt.Fprintf(out, "tracking since %s (%s)\n", start.Local().Format(displayTime), report.FormatDuration(elapsed))
				return nil
			})
		},
	}
}

func newRecoverCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Release a lock left behind by an interrupted stop",
		Long: `If a previous 'track stop' recorded its session but was interrupted
before removing the lock, 'track recover' removes the stale lock. An active,
unrecorded session is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				res, err := a.tracker.Recover()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch res.Status {
				case tracker.RecoveryIdle:
					fmt.Fprintln(out, "not tracking; nothing to recover")
				case tracker.RecoveryActive:
					fmt.Fprintf(out, "session started at %s is still active; nothing to recover\n", res.Start.Local().Format(displayTime))
				case tracker.RecoveryReleased:
					fmt.Fprintf(out, "released stale lock of the session started at %s\n", res.Start.Local().Format(displayTime))
				}
				return nil
			})
		},
	}
}

func newUnlockCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Discard the active session without recording it",
		Long: `Removes the lock, including an unreadable one, without appending a
record. The time of the discarded session is lost. Requires --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("refusing to discard the session without --force")
			}
			return withApp(opts, func(a *app) error {
				if err := a.tracker.Discard(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "lock removed; session discarded")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard the session and its time.")
	return cmd
}
