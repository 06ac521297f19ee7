package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("count")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			entries, err := s.Journal().ReadRecent(n)
			if err != nil {
				return err
			}

			type entryOut struct {
				Timestamp int64  `json:"timestamp"`
				Operation string `json:"operation"`
				Hash      string `json:"hash"`
				Path      string `json:"path"`
				Metadata  string `json:"metadata,omitempty"`
			}
			out := make([]entryOut, 0, len(entries))
			for _, e := range entries {
				out = append(out, entryOut{
					Timestamp: e.Timestamp,
					Operation: e.Operation,
					Hash:      e.Hash.Hex(),
					Path:      e.Path,
					Metadata:  e.Metadata,
				})
			}

			return newPrinter(cmd).emit(out, func() string {
				var b strings.Builder
				for _, e := range out {
					when := time.Unix(e.Timestamp, 0).Format(time.RFC3339)
					fmt.Fprintf(&b, "%s %-4s %s %s\n", when, e.Operation, e.Hash, e.Path)
				}
				return b.String()
			})
		},
	}
	cmd.Flags().IntP("count", "n", 10, "number of entries to show")
	return cmd
}
