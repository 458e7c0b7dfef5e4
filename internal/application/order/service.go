// Package order holds the administrator's view of orders.
package order

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apparel/storefront/internal/application/checkout"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultRecentDays  = 7
	defaultWeeklyGoal  = 5000
	defaultMonthlyGoal = 25000
	exportPageSize     = 500
)

var hundred = decimal.NewFromInt(100)

// SheetWriter renders orders as a spreadsheet
type SheetWriter interface {
	ContentType() string
	WriteOrders(w io.Writer, orders []order.Order) error
}

// Dashboard holds the admin listing window and revenue goals (major units)
type Dashboard struct {
	RecentDays  int
	WeeklyGoal  int64
	MonthlyGoal int64
	Currency    string
}

// AdminService lists, updates and reports on orders
type AdminService struct {
	orders         order.Repository
	sheets         SheetWriter
	dashboard      Dashboard
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(orders order.Repository, sheets SheetWriter, dashboard Dashboard, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dashboard.RecentDays <= 0 {
		dashboard.RecentDays = defaultRecentDays
	}
	if dashboard.WeeklyGoal <= 0 {
		dashboard.WeeklyGoal = defaultWeeklyGoal
	}
	if dashboard.MonthlyGoal <= 0 {
		dashboard.MonthlyGoal = defaultMonthlyGoal
	}
	if dashboard.Currency == "" {
		dashboard.Currency = "INR"
	}
	return &AdminService{orders: orders, sheets: sheets, dashboard: dashboard, logger: logger, now: time.Now}
}

// SetEventPublisher sets the event publisher
func (s *AdminService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns orders created in the last req.Days days, newest first
func (s *AdminService) List(ctx context.Context, req ListRequest) (*OrderListResponse, error) {
	filter, days, err := s.filter(req)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]checkout.OrderResponse, len(orders))
	for i := range orders {
		items[i] = checkout.ToOrderResponse(&orders[i])
	}
	return &OrderListResponse{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize, Days: days}, nil
}

func (s *AdminService) filter(req ListRequest) (order.ListFilter, int, error) {
	days := req.Days
	if days <= 0 {
		days = s.dashboard.RecentDays
	}
	since := s.now().AddDate(0, 0, -days)
	f := order.ListFilter{Filter: shared.DefaultFilter(), Since: &since}
	if req.Page > 0 {
		f.Page = req.Page
	}
	if req.PageSize > 0 {
		f.PageSize = req.PageSize
	}
	if req.Status != "" {
		status := order.FulfillmentStatus(req.Status)
		if !status.IsValid() {
			return f, 0, shared.NewDomainError("VALIDATION_ERROR", "Unknown order status")
		}
		f.Status = &status
	}
	if req.PaymentStatus != "" {
		status := order.PaymentStatus(req.PaymentStatus)
		if !status.IsValid() {
			return f, 0, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment status")
		}
		f.PaymentStatus = &status
	}
	return f, days, nil
}

// UpdateStatus moves the order through fulfillment and records tracking
func (s *AdminService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*checkout.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.UpdateFulfillment(order.FulfillmentStatus(req.Status)); err != nil {
		return nil, err
	}
	if req.TrackingID != "" {
		o.SetTrackingID(req.TrackingID)
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	logger.WithLogger(ctx, s.logger).Info("order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
	)
	resp := checkout.ToOrderResponse(o)
	return &resp, nil
}

// MarkCODPaid records cash collected on delivery
func (s *AdminService) MarkCODPaid(ctx context.Context, id uuid.UUID) (*checkout.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != order.PaymentMethodCOD {
		return nil, shared.NewDomainError("INVALID_STATE", "Only cash on delivery orders can be marked paid")
	}
	if err := o.MarkPaid(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	resp := checkout.ToOrderResponse(o)
	return &resp, nil
}

// RevenueSummary sums paid orders of the last 7 and 30 days against the goals
func (s *AdminService) RevenueSummary(ctx context.Context) (*RevenueSummary, error) {
	now := s.now()
	weekly, err := s.orders.SumPaidSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly revenue: %w", err)
	}
	monthly, err := s.orders.SumPaidSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	weeklyGoal := decimal.NewFromInt(s.dashboard.WeeklyGoal)
	monthlyGoal := decimal.NewFromInt(s.dashboard.MonthlyGoal)
	weekly, monthly = toMajor(weekly), toMajor(monthly)
	return &RevenueSummary{
		Currency:        s.dashboard.Currency,
		WeeklyRevenue:   weekly,
		WeeklyGoal:      weeklyGoal,
		WeeklyProgress:  progress(weekly, weeklyGoal),
		MonthlyRevenue:  monthly,
		MonthlyGoal:     monthlyGoal,
		MonthlyProgress: progress(monthly, monthlyGoal),
	}, nil
}

// ExportXLSX writes every order of the listing window to w
func (s *AdminService) ExportXLSX(ctx context.Context, w io.Writer, req ListRequest) error {
	if s.sheets == nil {
		return shared.NewDomainError("EXPORT_DISABLED", "Order export is not configured")
	}
	req.Page, req.PageSize = 1, exportPageSize
	filter, _, err := s.filter(req)
	if err != nil {
		return err
	}

	var all []order.Order
	for {
		page, total, err := s.orders.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		all = append(all, page...)
		if len(page) < filter.PageSize || int64(len(all)) >= total {
			break
		}
		filter.Page++
	}

	logger.WithLogger(ctx, s.logger).Info("exporting orders", zap.Int("count", len(all)))
	return s.sheets.WriteOrders(w, all)
}

// ContentType is the media type ExportXLSX writes
func (s *AdminService) ContentType() string {
	if s.sheets == nil {
		return ""
	}
	return s.sheets.ContentType()
}

func (s *AdminService) publish(ctx context.Context, o *order.Order) {
	if err := shared.PublishPending(ctx, s.eventPublisher, o); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish order events",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func toMajor(minor decimal.Decimal) decimal.Decimal {
	return minor.Shift(-2)
}

// progress is revenue as a percentage of goal, capped at 100
func progress(revenue, goal decimal.Decimal) decimal.Decimal {
	if !goal.IsPositive() {
		return decimal.Zero
	}
	p := revenue.Div(goal).Mul(hundred).Round(2)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
