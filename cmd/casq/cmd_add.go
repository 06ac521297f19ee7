package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <paths...>",
		Short: "Add files or directories to the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refName, _ := cmd.Flags().GetString("ref")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}

			type added struct {
				Hash string `json:"hash"`
				Path string `json:"path"`
				Ref  string `json:"ref,omitempty"`
			}
			results := make([]added, 0, len(args))

			for _, path := range args {
				h, err := s.AddPath(path)
				if err != nil {
					return err
				}
				result := added{Hash: h.Hex(), Path: path}
				if refName != "" {
					if err := s.Refs().Add(refName, h); err != nil {
						return err
					}
					result.Ref = refName
				}
				results = append(results, result)
			}

			return newPrinter(cmd).emit(results, func() string {
				var b strings.Builder
				for _, r := range results {
					fmt.Fprintf(&b, "%s %s\n", r.Hash, r.Path)
					if r.Ref != "" {
						fmt.Fprintf(&b, "Created reference: %s -> %s\n", r.Ref, r.Hash)
					}
				}
				return b.String()
			})
		},
	}
	cmd.Flags().String("ref", "", "create a reference to the added content")
	return cmd
}
