package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/domain/entity"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
}

var orderStatusCmd = &cobra.Command{
	Use:   "status <order-id> <status>",
	Short: "Move an order to a new status",
	Long: `status sets the order's status. Valid statuses are pending, processing,
shipped, delivered, cancelled and returned.`,
	Args: cobra.ExactArgs(2),
	RunE: runOrderStatus,
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderStatusCmd)
}

func runOrderStatus(cmd *cobra.Command, args []string) error {
	status := entity.OrderStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", args[1])
	}

	order, err := newSynchronizer().UpdateOrderStatus(cmd.Context(), args[0], status)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), order)
}
