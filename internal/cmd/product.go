package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storefront/internal/storesync"
)

var productInput storesync.ProductInput

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage catalog products",
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a product",
	RunE:  runProductAdd,
}

var productStockCmd = &cobra.Command{
	Use:   "stock <id> <stock>",
	Short: "Set a product's stock level",
	Args:  cobra.ExactArgs(2),
	RunE:  runProductStock,
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the given fields of a product",
	Long: `update sends only the flags that were set, so
  storefront product update p1 --price 19.99
leaves every other field alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runProductUpdate,
}

func addProductFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&productInput.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&productInput.Description, "description", "", "Product description")
	cmd.Flags().StringVar(&productInput.Category, "category", "", "Category slug")
	cmd.Flags().Float64Var(&productInput.Price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&productInput.Stock, "stock", 0, "Units in stock")
	cmd.Flags().StringVar(&productInput.Image, "image", "", "Image URL")
	cmd.Flags().Float64Var(&productInput.Rating, "rating", 0, "Average rating, 0 to 5")
	cmd.Flags().IntVar(&productInput.Reviews, "reviews", 0, "Number of reviews")
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productAddCmd, productStockCmd, productUpdateCmd)

	addProductFlags(productAddCmd)
	productAddCmd.MarkFlagRequired("name")
	addProductFlags(productUpdateCmd)
}

// patchFromFlags turns the flags set on cmd into a patch.
func patchFromFlags(cmd *cobra.Command) storesync.ProductPatch {
	var patch storesync.ProductPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &productInput.Name
	}
	if flags.Changed("description") {
		patch.Description = &productInput.Description
	}
	if flags.Changed("category") {
		patch.Category = &productInput.Category
	}
	if flags.Changed("price") {
		patch.Price = &productInput.Price
	}
	if flags.Changed("stock") {
		patch.Stock = &productInput.Stock
	}
	if flags.Changed("image") {
		patch.Image = &productInput.Image
	}
	if flags.Changed("rating") {
		patch.Rating = &productInput.Rating
	}
	if flags.Changed("reviews") {
		patch.Reviews = &productInput.Reviews
	}
	return patch
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	product, err := newSynchronizer().AddProduct(cmd.Context(), productInput)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), product)
}

func runProductStock(cmd *cobra.Command, args []string) error {
	var stock int
	if _, err := fmt.Sscan(args[1], &stock); err != nil || stock < 0 {
		return fmt.Errorf("stock must be a non-negative integer, got %q", args[1])
	}

	product, err := newSynchronizer().UpdateProductStock(cmd.Context(), args[0], stock)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), product)
}

func runProductUpdate(cmd *cobra.Command, args []string) error {
	patch := patchFromFlags(cmd)
	if patch == (storesync.ProductPatch{}) {
		return fmt.Errorf("nothing to update: set at least one field flag")
	}

	product, err := newSynchronizer().UpdateProduct(cmd.Context(), args[0], patch)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), product)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
