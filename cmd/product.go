package cmd

import (
	"github.com/spf13/cobra"

	productCmd "github.com/Alturino/shop/product/cmd"
	"github.com/Alturino/shop/product/pkg/request"
)

func newProductCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Run product service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return productCmd.RunProductService(cmd.Context())
		},
	}
	cmd.AddCommand(newProductInsertCommand(), newProductRemoveCommand())
	return cmd
}

func newProductInsertCommand() *cobra.Command {
	param := request.InsertProduct{}
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert one product into the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := productCmd.RunInsertProduct(cmd.Context(), param)
			if err != nil {
				return err
			}
			cmd.Println(product.ID.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&param.Title, "title", "", "product title")
	cmd.Flags().StringVar(&param.Price, "price", "", "unit price, at most two decimals")
	cmd.Flags().StringVar(&param.Description, "description", "", "product description")
	cmd.Flags().StringVar(&param.Image, "image", "", "image url")
	cmd.Flags().StringVar(&param.Category, "category", "", "product category")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <productId>",
		Short: "Remove a product from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := productCmd.RunRemoveProduct(cmd.Context(), args[0])
			return err
		},
	}
}
