package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/hash"
)

func newRefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Manage named references",
	}
	cmd.AddCommand(newRefsAddCmd())
	cmd.AddCommand(newRefsListCmd())
	cmd.AddCommand(newRefsRmCmd())
	return cmd
}

func newRefsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <hash>",
		Short: "Add or update a reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			h, err := hash.ParseHex(args[1])
			if err != nil {
				return err
			}
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := s.Refs().Add(name, h); err != nil {
				return err
			}
			return newPrinter(cmd).emit(
				struct {
					Name string `json:"name"`
					Hash string `json:"hash"`
				}{name, h.Hex()},
				func() string { return fmt.Sprintf("%s -> %s\n", name, h) },
			)
		},
	}
}

func newRefsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
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
		},
	}
}

func newRefsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := s.Refs().Remove(args[0]); err != nil {
				return err
			}
			return newPrinter(cmd).emit(
				struct {
					Name string `json:"name"`
				}{args[0]},
				func() string { return fmt.Sprintf("Removed reference %s\n", args[0]) },
			)
		},
	}
}
