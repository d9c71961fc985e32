package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// NewCommitCommand creates the commit subcommand: commit one new
// transaction, read from stdin in dump format without the leading txn
// header line.
//
// The <at> argument is the caller's idea of the current head and guards
// against conflicting simultaneous commits; query it with "ohist info
// <storage> head".
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <storage> <at> < input",
		Short: "commit new transaction into a database history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := ohist.ParseTid(args[1])
			if err != nil {
				return err
			}
			txn, err := readCommitTxn(os.Stdin, at)
			if err != nil {
				return err
			}

			stor, err := openStorage(args[0])
			if err != nil {
				return err
			}
			defer stor.Close()

			head, err := stor.LastTid()
			if err != nil {
				return err
			}
			if head != at {
				return fmt.Errorf("conflict: storage head is %v, not %v", head, at)
			}

			tid, err := ohist.CommitTxn(stor, txn)
			if err != nil {
				return err
			}
			fmt.Println(tid)
			return nil
		},
	}
}

// readCommitTxn parses one headerless transaction from r. The dump format
// requires a txn header line, so one is synthesized under a provisional tid
// just above the claimed head; back-references into existing history (tids
// up to at) stay valid that way. The returned transaction carries a zero
// tid so the storage assigns the real one at commit time.
func readCommitTxn(r io.Reader, at ohist.Tid) (*ohist.Transaction, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "txn %v \" \"\n", at+1)
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}

	dr := ohist.NewDumpReader(&buf, "stdin")
	txn, err := dr.ReadTxn()
	if err != nil {
		return nil, err
	}
	if _, err := dr.ReadTxn(); err != io.EOF {
		return nil, fmt.Errorf("+%d: garbage after transaction", dr.Line())
	}
	txn.Tid = 0
	return txn, nil
}
