package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// infoParams maps parameter names to the functions that compute them.
var infoParams = map[string]func(ohist.Storage) (string, error){
	"head": func(stor ohist.Storage) (string, error) {
		head, err := stor.LastTid()
		if err != nil {
			return "", err
		}
		return head.String(), nil
	},
	"head_time": func(stor ohist.Storage) (string, error) {
		head, err := stor.LastTid()
		if err != nil {
			return "", err
		}
		if head == ohist.Tid0 {
			return "-", nil
		}
		return head.Time().String(), nil
	},
}

// NewInfoCommand creates the info subcommand: print general information
// about a database history, or a single named parameter.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <storage> [<parameter>]",
		Short: "print information about a database history",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stor, err := openStorage(args[0])
			if err != nil {
				return err
			}
			defer stor.Close()

			if len(args) == 2 {
				name := args[1]
				f := infoParams[name]
				if f == nil {
					return fmt.Errorf("invalid parameter: %q", name)
				}
				v, err := f(stor)
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			}

			names := make([]string, 0, len(infoParams))
			for name := range infoParams {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				v, err := infoParams[name](stor)
				if err != nil {
					return err
				}
				fmt.Printf("%s=%s\n", name, v)
			}
			return nil
		},
	}
}
