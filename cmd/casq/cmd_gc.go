package main

import (
	"fmt"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func newGcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Delete objects unreachable from any reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			stats, err := s.GC(dryRun)
			if err != nil {
				return err
			}

			return newPrinter(cmd).emit(
				struct {
					DryRun         bool   `json:"dry_run"`
					ObjectsDeleted int    `json:"objects_deleted"`
					BytesFreed     uint64 `json:"bytes_freed"`
				}{dryRun, stats.ObjectsDeleted, stats.BytesFreed},
				func() string {
					verb := "deleted"
					if dryRun {
						verb = "would delete"
					}
					return fmt.Sprintf("%s %d object(s), %s\n",
						verb, stats.ObjectsDeleted, units.HumanSize(float64(stats.BytesFreed)))
				},
			)
		},
	}
	cmd.Flags().Bool("dry-run", false, "report without deleting")
	return cmd
}
