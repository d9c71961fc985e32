package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// NewRestoreCommand creates the restore subcommand: replay a dump stream
// from stdin into a storage, printing the tid of every restored
// transaction.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <storage> < input",
		Short: "restore content of a database history from a dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stor, err := openStorage(args[0])
			if err != nil {
				return err
			}
			defer stor.Close()

			dr := ohist.NewDumpReader(os.Stdin, "stdin")
			return ohist.Restore(stor, dr, func(txn *ohist.Transaction) {
				fmt.Println(txn.Tid)
			})
		},
	}
}
