package order

import (
	"github.com/apparel/storefront/internal/application/checkout"
	"github.com/shopspring/decimal"
)

// ListRequest filters the admin order list
type ListRequest struct {
	Days          int    `form:"days" binding:"omitempty,min=1,max=365"`
	Status        string `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string `form:"paymentStatus" binding:"omitempty,oneof=initiated pending paid failed cancelled"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateStatusRequest moves an order through fulfillment
type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingID string `json:"trackingId" binding:"max=100"`
}

// OrderListResponse is a page of orders
type OrderListResponse struct {
	Items    []checkout.OrderResponse `json:"items"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"pageSize"`
	Days     int                      `json:"days"`
}

// RevenueSummary compares paid revenue against the dashboard goals.
// All amounts are in major currency units.
type RevenueSummary struct {
	Currency        string          `json:"currency"`
	WeeklyRevenue   decimal.Decimal `json:"weeklyRevenue"`
	WeeklyGoal      decimal.Decimal `json:"weeklyGoal"`
	WeeklyProgress  decimal.Decimal `json:"weeklyProgress"`
	MonthlyRevenue  decimal.Decimal `json:"monthlyRevenue"`
	MonthlyGoal     decimal.Decimal `json:"monthlyGoal"`
	MonthlyProgress decimal.Decimal `json:"monthlyProgress"`
}
