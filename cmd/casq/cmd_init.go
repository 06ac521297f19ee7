package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/store"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			algoName, _ := cmd.Flags().GetString("algo")
			force, _ := cmd.Flags().GetBool("force")

			alg, err := hash.ParseAlgorithm(algoName)
			if err != nil {
				return err
			}

			root := resolveRoot(cmd)
			if _, err := store.Init(root, alg, force); err != nil {
				return err
			}

			return newPrinter(cmd).emit(
				struct {
					Root      string `json:"root"`
					Algorithm string `json:"algorithm"`
				}{root, alg.String()},
				func() string {
					return fmt.Sprintf("Initialized casq store at %s\nAlgorithm: %s\n", root, alg)
				},
			)
		},
	}
	cmd.Flags().String("algo", "blake3-256", "hash algorithm")
	cmd.Flags().Bool("force", false, "reinitialize an existing store")
	return cmd
}
