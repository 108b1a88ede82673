package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyleseneker/track/internal/config"
	"github.com/kyleseneker/track/internal/model"
)

// displayTime is how times are shown to the user.
const displayTime = "2006-01-02 15:04:05 MST"

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	cfgFile     string
	lockFile    string
	recordsFile string
	backend     string
	dsn         string
}

func (o *rootOptions) overrides() config.Overrides {
	return config.Overrides{
		LockFile:    o.lockFile,
		RecordsFile: o.recordsFile,
		Backend:     o.backend,
		DatabaseDSN: o.dsn,
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "track",
		Short: "A minimal personal time tracker",
		Long: `track records how long you work. 'track start' opens a session,
'track stop' closes it and appends it to the interval log, and
'track report' sums the recorded time over a window.

At most one session is active at a time, across every terminal and process
on the machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.track/track.toml or ./track.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.lockFile, "lockfile", "", "Override the lock_file path.")
	rootCmd.PersistentFlags().StringVar(&opts.recordsFile, "records", "", "Override the records_file path.")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Override the storage backend: file, sqlite or postgres.")
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "Override the database_dsn for the sqlite and postgres backends.")

	rootCmd.AddCommand(
		newStartCmd(opts),
		newStopCmd(opts),
		newReportCmd(opts),
		newStatusCmd(opts),
		newLogCmd(opts),
		newWatchCmd(opts),
		newRecoverCmd(opts),
		newUnlockCmd(opts),
	)
	return rootCmd
}

// Execute runs the command line and reports any failure on stderr, with a
// suggestion when the error kind has one.
func Execute() error {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd, err)
	}
	return err
}

func reportError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := model.Suggestion(err); hint != "" {
		fmt.Fprintf(w, "suggestion: %s\n", hint)
	}
}
