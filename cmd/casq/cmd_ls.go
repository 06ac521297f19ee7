package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
	"github.com/odvcencio/casq/pkg/store"
)

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [hash]",
		Short: "List tree entries, or all refs when no hash is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return lsRefs(cmd, s)
			}

			h, err := hash.ParseHex(args[0])
			if err != nil {
				return err
			}
			long, _ := cmd.Flags().GetBool("long")
			return lsObject(cmd, s, h, long)
		},
	}
	cmd.Flags().BoolP("long", "l", false, "show mode and target hash per entry")
	return cmd
}

func lsRefs(cmd *cobra.Command, s *store.Store) error {
	refs, err := s.Refs().List()
	if err != nil {
		return err
	}

	type refOut struct {
		Name string `json:"name"`
		Hash string `json:"hash"`
	}
	out := make([]refOut, 0, len(refs))
	for _, r := range refs {
		out = append(out, refOut{Name: r.Name, Hash: r.Target.Hex()})
	}

	return newPrinter(cmd).emit(out, func() string {
		var b strings.Builder
		for _, r := range out {
			fmt.Fprintf(&b, "%s %s\n", r.Hash, r.Name)
		}
		return b.String()
	})
}

func lsObject(cmd *cobra.Command, s *store.Store, h hash.Hash, long bool) error {
	info, err := s.Stat(h)
	if err != nil {
		return err
	}
	if info.Type != object.TypeTree {
		return newPrinter(cmd).emit(
			struct {
				Hash string `json:"hash"`
				Type string `json:"type"`
			}{h.Hex(), info.Type.String()},
			func() string { return fmt.Sprintf("%s %s\n", info.Type, h) },
		)
	}

	entries, err := s.GetTree(h)
	if err != nil {
		return err
	}

	type entryOut struct {
		Type string `json:"type"`
		Mode string `json:"mode"`
		Hash string `json:"hash"`
		Name string `json:"name"`
	}
	out := make([]entryOut, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryOut{
			Type: e.Type.String(),
			Mode: fmt.Sprintf("%06o", e.Mode),
			Hash: e.Target.Hex(),
			Name: e.Name,
		})
	}

	return newPrinter(cmd).emit(out, func() string {
		var b strings.Builder
		for _, e := range out {
			if long {
				fmt.Fprintf(&b, "%s %s %s %s\n", e.Mode, e.Type, e.Hash, e.Name)
			} else {
				fmt.Fprintf(&b, "%s\n", e.Name)
			}
		}
		return b.String()
	})
}
