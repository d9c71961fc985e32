package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// NewAnalyzeCommand creates the analyze subcommand: print size statistics
// for a range of history. The input is either a storage URL or "-" to read
// a dump stream from stdin.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "analyze [flags] <storage|-> [<tidrange>]",
		Short: "analyze size of a database history",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var it ohist.TxnIterator
			if args[0] == "-" {
				it = ohist.NewDumpReader(os.Stdin, "stdin")
			} else {
				r, err := rangeArg(args, 1)
				if err != nil {
					return err
				}
				stor, err := openStorage(args[0])
				if err != nil {
					return err
				}
				defer stor.Close()
				it = stor.Iterate(r)
			}

			rep, err := ohist.Analyze(it)
			if err != nil {
				return err
			}
			return rep.WriteText(os.Stdout, topN)
		},
	}
	cmd.Flags().IntVar(&topN, "top", 0, "limit per-object table to the N largest objects")
	return cmd
}
