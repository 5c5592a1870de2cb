package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/storesync"
)

var categoryInput storesync.CategoryInput

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage catalog categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE:  runCategoryList,
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)

	categoryAddCmd.Flags().StringVar(&categoryInput.Description, "description", "", "Category description")
	categoryAddCmd.Flags().StringVar(&categoryInput.Status, "status", "", "active or inactive")
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	categoryInput.Name = args[0]
	category, err := newSynchronizer().AddCategory(cmd.Context(), categoryInput)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), category)
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	categories, err := newSynchronizer().ListCategories(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tNAME\tSTATUS")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Slug, c.Name, c.Status)
	}
	return w.Flush()
}
