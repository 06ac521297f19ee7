package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "casq",
		Short:         "Content-addressed file store using BLAKE3",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("root", "", "store root directory (default: $CASQ_ROOT, then root in ~/.casq.toml, then ./casq-store)")
	root.PersistentFlags().Bool("json", false, "emit JSON on stdout")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newPutCmd())
	root.AddCommand(newCatCmd())
	root.AddCommand(newLsCmd())
	root.AddCommand(newStatCmd())
	root.AddCommand(newMaterializeCmd())
	root.AddCommand(newRefsCmd())
	root.AddCommand(newGcCmd())
	root.AddCommand(newOrphansCmd())
	root.AddCommand(newLogCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "casq 0.2.0")
		},
	}
}
