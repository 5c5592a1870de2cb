package entity

type Stats struct {
	TotalProducts    int            `json:"total_products"`
	TotalOrders      int            `json:"total_orders"`
	TotalRevenue     float64        `json:"total_revenue"`
	PendingOrders    int            `json:"pending_orders"`
	LowStockProducts int            `json:"low_stock_products"`
	OrdersByStatus   map[string]int `json:"orders_by_status"`
}
