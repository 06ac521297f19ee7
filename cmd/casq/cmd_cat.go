package main

import (
	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/hash"
)

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <hash>",
		Short: "Write blob content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := hash.ParseHex(args[0])
			if err != nil {
				return err
			}
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			return s.GetBlobTo(h, cmd.OutOrStdout())
		},
	}
}
