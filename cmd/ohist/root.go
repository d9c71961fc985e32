package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// RootOptions holds global flags shared by all subcommands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the ohist command-line driver.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ohist",
		Short: "manage object database histories",
		Long: `Ohist dumps, restores, compares and analyzes the append-only
transaction history of an object database.

<storage> arguments are URLs dispatched to registered storage drivers
(mem:// is built in). <tidrange> arguments use the [<part>]..[<part>]
syntax; parts can be literal tids, absolute or relative times ("3 weeks
ago"), or named instants ("noon yesterday").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewCommitCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewCmpCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))

	return cmd
}

// rangeArg resolves the optional tidrange argument at index i, defaulting
// to the entire history. Resolution is against the current wall clock and
// the local time zone.
func rangeArg(args []string, i int) (ohist.TidRange, error) {
	if len(args) <= i {
		return ohist.EntireHistory, nil
	}
	return ohist.ParseTidRange(args[i], time.Now(), time.Local)
}

func openStorage(url string) (ohist.Storage, error) {
	stor, err := ohist.OpenStorage(url)
	if err != nil {
		return nil, err
	}
	slog.Debug("opened storage", "url", url)
	return stor, nil
}
