package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put",
		Short: "Store a blob read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}

			h, err := s.PutBlob(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := s.Journal().Append("put", h, "(stdin)", ""); err != nil {
				return err
			}

			return newPrinter(cmd).emit(
				struct {
					Hash string `json:"hash"`
				}{h.Hex()},
				func() string { return fmt.Sprintf("%s\n", h) },
			)
		},
	}
}
