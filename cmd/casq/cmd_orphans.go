package main

import (
	"fmt"
	"strings"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func newOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List unreferenced tree roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			orphans, err := s.FindOrphanRoots()
			if err != nil {
				return err
			}

			// The journal supplies the original path when it still
			// remembers the hash.
			paths := make(map[string]string)
			if entries, err := s.OrphanJournalEntries(); err == nil {
				for _, e := range entries {
					paths[e.Hash.Hex()] = e.Path
				}
			}

			type orphanOut struct {
				Hash       string `json:"hash"`
				EntryCount int    `json:"entry_count"`
				DiskSize   uint64 `json:"disk_size"`
				Path       string `json:"path,omitempty"`
			}
			out := make([]orphanOut, 0, len(orphans))
			for _, o := range orphans {
				out = append(out, orphanOut{
					Hash:       o.Hash.Hex(),
					EntryCount: o.EntryCount,
					DiskSize:   o.DiskSize,
					Path:       paths[o.Hash.Hex()],
				})
			}

			return newPrinter(cmd).emit(out, func() string {
				if len(out) == 0 {
					return "no orphans\n"
				}
				var b strings.Builder
				for _, o := range out {
					fmt.Fprintf(&b, "%s %d entries %s", o.Hash, o.EntryCount,
						units.HumanSize(float64(o.DiskSize)))
					if o.Path != "" {
						fmt.Fprintf(&b, " (%s)", o.Path)
					}
					b.WriteByte('\n')
				}
				return b.String()
			})
		},
	}
}
