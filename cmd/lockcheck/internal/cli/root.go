// Package cli implements the lockcheck command line, built with
// github.com/spf13/cobra following the command structure seen in both
// Heman10x-NGU-threadgraph and vovakirdan-surge (a single root command
// with a small set of persistent flags; no subcommands, since lockcheck
// performs one action).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitClean = 0
	exitFound = 1
	exitError = 2
)

var (
	flagDir    string
	flagConfig string
	flagFormat string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lockcheck [flags] [packages...]",
		Short: "Find lock-order inversions in a Go program",
		Long: "lockcheck statically analyzes a whole Go program for pairs of lock\n" +
			"classes that are acquired in inconsistent order somewhere in the\n" +
			"call graph, given a generic lock type configured in lockcheck.toml.",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := args
			if len(patterns) == 0 {
				patterns = []string{"./..."}
			}
			exitCode, err := runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), patterns)
			if err != nil {
				return err
			}
			if exitCode != exitClean {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flagDir, "dir", ".", "directory to start lockcheck.toml discovery from")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to lockcheck.toml (overrides discovery)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text or json")

	return cmd
}

// Execute runs the CLI and returns the process exit code for a clean run
// (exitClean) or a failed one (exitError). When findings are reported the
// command itself exits the process with exitFound, so Execute does not
// return.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lockcheck:", err)
		return exitError
	}
	return exitClean
}
