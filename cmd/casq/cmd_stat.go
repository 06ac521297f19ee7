package main

import (
	"fmt"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/hash"
)

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <hash>",
		Short: "Show object metadata",
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
			info, err := s.Stat(h)
			if err != nil {
				return err
			}

			return newPrinter(cmd).emit(
				struct {
					Hash        string `json:"hash"`
					Type        string `json:"type"`
					Compression string `json:"compression"`
					PayloadLen  uint64 `json:"payload_len"`
					DiskSize    int64  `json:"disk_size"`
				}{h.Hex(), info.Type.String(), info.Compression.String(), info.PayloadLen, info.DiskSize},
				func() string {
					return fmt.Sprintf("hash:        %s\ntype:        %s\ncompression: %s\npayload:     %d bytes\non disk:     %s\n",
						h, info.Type, info.Compression, info.PayloadLen,
						units.HumanSize(float64(info.DiskSize)))
				},
			)
		},
	}
}
