package cmd

import (
	"github.com/spf13/cobra"

	productCmd "github.com/Alturino/shop/product/cmd"
)

func newSeedCommand() *cobra.Command {
	var (
		filename string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the product catalog from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return productCmd.RunSeed(cmd.Context(), filename, force)
		},
	}
	cmd.Flags().StringVarP(&filename, "file", "f", "env/catalog.json", "catalog file")
	cmd.Flags().BoolVar(&force, "force", false, "insert even when the catalog is not empty")
	return cmd
}
