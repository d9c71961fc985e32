package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// NewDumpCommand creates the dump subcommand: serialize a history range to
// stdout in the dump format.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		hashFunc string
		hashOnly bool
	)

	cmd := &cobra.Command{
		Use:   "dump [flags] <storage> [<tidrange>]",
		Short: "dump content of a database history",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rangeArg(args, 1)
			if err != nil {
				return err
			}
			stor, err := openStorage(args[0])
			if err != nil {
				return err
			}
			defer stor.Close()

			return ohist.Dump(os.Stdout, stor.Iterate(r), ohist.DumpOptions{
				HashFunc: hashFunc,
				HashOnly: hashOnly,
			})
		},
	}
	cmd.Flags().StringVar(&hashFunc, "hash", ohist.DefaultHashFunc, "hash function for content records")
	cmd.Flags().BoolVar(&hashOnly, "hashonly", false, "dump only hashes of objects without content")
	return cmd
}
