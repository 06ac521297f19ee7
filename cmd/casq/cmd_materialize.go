package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/hash"
)

func newMaterializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materialize <hash> <dest>",
		Short: "Write an object back to the filesystem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := hash.ParseHex(args[0])
			if err != nil {
				return err
			}
			dest := args[1]

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := s.Materialize(h, dest); err != nil {
				return err
			}

			return newPrinter(cmd).emit(
				struct {
					Hash string `json:"hash"`
					Dest string `json:"dest"`
				}{h.Hex(), dest},
				func() string { return fmt.Sprintf("Materialized %s to %s\n", h, dest) },
			)
		},
	}
}
