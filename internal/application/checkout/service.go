// Package checkout turns a configuration into exactly one priced order per
// customer and opens the payment session for it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/pricing"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomProductName is shown at the gateway for custom designs
const CustomProductName = "Custom T-Shirt"

const (
	defaultLockTTL  = 30 * time.Second
	defaultLockWait = 5 * time.Second
	lockPollEvery   = 50 * time.Millisecond
)

// Locker hands out short-lived exclusive locks
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Redirects builds the storefront pages a customer is sent to
type Redirects interface {
	ThankYou(orderID uuid.UUID) string
}

// Options tune the checkout service
type Options struct {
	// Currency of new orders, INR when empty
	Currency string
	// LockTTL bounds how long one checkout may hold the per-key lock
	LockTTL time.Duration
	// LockWait is how long to wait for the lock before going ahead without it
	LockWait time.Duration
}

// Service reconciles orders and initiates payments
type Service struct {
	configs        design.ConfigurationRepository
	resolver       *design.Resolver
	calculator     *pricing.Calculator
	orders         order.Repository
	users          identity.UserRepository
	payments       *payment.Registry
	redirects      Redirects
	locker         Locker
	opts           Options
	metrics        *telemetry.Metrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new checkout Service
func NewService(
	configs design.ConfigurationRepository,
	resolver *design.Resolver,
	calculator *pricing.Calculator,
	orders order.Repository,
	users identity.UserRepository,
	payments *payment.Registry,
	redirects Redirects,
	opts Options,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	return &Service{
		configs:    configs,
		resolver:   resolver,
		calculator: calculator,
		orders:     orders,
		users:      users,
		payments:   payments,
		redirects:  redirects,
		opts:       opts,
		logger:     logger,
	}
}

// SetLocker serializes checkouts of the same (user, configuration) key.
// Storage uniqueness stays authoritative without it.
func (s *Service) SetLocker(locker Locker) {
	s.locker = locker
}

// SetMetrics sets the metrics recorder
func (s *Service) SetMetrics(metrics *telemetry.Metrics) {
	s.metrics = metrics
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// reconciled is an order together with the configuration it was priced from
type reconciled struct {
	order   *order.Order
	config  *design.ResolvedConfiguration
	created bool
}

// CreateOrGetOrder returns the single order for (caller, configuration),
// creating it on first call. Repeated and concurrent calls return the same
// order; its amount is the price at creation.
func (s *Service) CreateOrGetOrder(ctx context.Context, caller identity.Principal, req CheckoutRequest) (*order.Order, error) {
	var out *reconciled
	err := s.withKeyLock(ctx, caller.UserID, req.ConfigurationID, func(ctx context.Context) error {
		var err error
		out, err = s.reconcile(ctx, caller, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out.order, nil
}

// Checkout reconciles the order and opens a payment session for it.
// A paid order is never sent to the gateway again.
func (s *Service) Checkout(ctx context.Context, caller identity.Principal, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "checkout",
		telemetry.ConfigurationIDKey.String(req.ConfigurationID.String()),
		telemetry.PaymentMethodKey.String(req.PaymentMethod),
	)
	defer span.End()

	var result *CheckoutResult
	err := s.withKeyLock(ctx, caller.UserID, req.ConfigurationID, func(ctx context.Context) error {
		rec, err := s.reconcile(ctx, caller, req)
		if err != nil {
			return err
		}
		span.SetAttributes(telemetry.OrderIDKey.String(rec.order.ID.String()))
		result, err = s.initiatePayment(ctx, caller, rec)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.PaymentStatusKey.String(string(result.PaymentStatus)))
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, caller identity.Principal, req CheckoutRequest) (*reconciled, error) {
	if !caller.IsAuthenticated() {
		return nil, shared.ErrUnauthenticated
	}
	log := s.log(ctx).With(
		zap.String("user_id", caller.UserID),
		zap.String("configuration_id", req.ConfigurationID.String()),
		zap.String("payment_method", req.PaymentMethod),
	)

	cfg, err := s.configs.FindByID(ctx, req.ConfigurationID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolver.Resolve(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}

	// An existing order keeps its amount and method, even if the catalog
	// changed since or the request names another method.
	existing, err := s.orders.FindByUserAndConfiguration(ctx, caller.UserID, cfg.ID)
	switch {
	case err == nil:
		s.metrics.RecordCheckout(string(existing.PaymentMethod), telemetry.CheckoutExisting)
		return &reconciled{order: existing, config: resolved}, nil
	case !errors.Is(err, shared.ErrNotFound):
		s.metrics.RecordCheckout(req.PaymentMethod, telemetry.CheckoutFailed)
		return nil, err
	}

	method, ok := order.ParsePaymentMethod(req.PaymentMethod)
	if !ok || (s.payments != nil && !s.payments.Supports(method)) {
		return nil, order.ErrUnsupportedPaymentMethod
	}

	if err := cfg.ValidateForCheckout(); err != nil {
		return nil, err
	}
	quote, err := s.calculator.Compute(resolved)
	if err != nil {
		return nil, err
	}

	o, err := s.buildOrder(ctx, caller, cfg.ID, quote, method, req.ShippingAddress)
	if err != nil {
		s.metrics.RecordCheckout(string(method), telemetry.CheckoutFailed)
		return nil, err
	}
	inserted, err := s.orders.CreateIfAbsent(ctx, o)
	if err != nil {
		s.metrics.RecordCheckout(string(method), telemetry.CheckoutFailed)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	// The row that won the unique key is the order, whoever inserted it.
	stored, err := s.orders.FindByUserAndConfiguration(ctx, caller.UserID, cfg.ID)
	if err != nil {
		s.metrics.RecordCheckout(string(method), telemetry.CheckoutFailed)
		return nil, fmt.Errorf("failed to load order after create: %w", err)
	}

	if inserted {
		s.metrics.RecordCheckout(string(method), telemetry.CheckoutCreated)
		s.publish(ctx, o)
		log.Info("order created", zap.String("order_id", stored.ID.String()), zap.String("amount", quote.Total.String()))
	} else {
		s.metrics.RecordCheckout(string(stored.PaymentMethod), telemetry.CheckoutExisting)
		log.Info("concurrent checkout resolved to existing order", zap.String("order_id", stored.ID.String()))
	}
	return &reconciled{order: stored, config: resolved, created: inserted}, nil
}

func (s *Service) buildOrder(
	ctx context.Context,
	caller identity.Principal,
	configurationID uuid.UUID,
	quote pricing.Quote,
	method order.PaymentMethod,
	shipping *AddressRequest,
) (*order.Order, error) {
	user, err := identity.NewUser(caller.UserID, caller.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record customer: %w", err)
	}

	var address *order.Address
	if shipping != nil {
		address, err = order.NewAddress(shipping.toInput())
		if err != nil {
			return nil, err
		}
	}
	return order.NewOrder(caller.UserID, configurationID, quote.Total, s.opts.Currency, method, address)
}

func (s *Service) initiatePayment(ctx context.Context, caller identity.Principal, rec *reconciled) (*CheckoutResult, error) {
	o := rec.order
	if o.PaymentStatus == order.PaymentStatusPaid {
		return s.result(o), nil
	}
	if o.PaymentStatus.IsTerminal() || o.Status == order.FulfillmentCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "This order was cancelled")
	}
	if o.PaymentMethod == order.PaymentMethodCOD && o.HasActiveIntent() {
		return s.result(o), nil
	}

	adapter, err := s.payments.Get(o.PaymentMethod)
	if err != nil {
		return nil, err
	}
	req := payment.NewInitiateRequest(o, caller.Email, productName(rec.config), rec.config.DisplayImageURL())
	res, err := adapter.Initiate(ctx, req)
	s.metrics.RecordPaymentInitiation(string(o.PaymentMethod), err)
	if err != nil {
		s.log(ctx).Warn("payment initiation failed",
			zap.String("order_id", o.ID.String()),
			zap.String("payment_method", string(o.PaymentMethod)),
			zap.Error(err),
		)
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrPaymentGateway, err)
	}

	if err := o.RecordPaymentInitiation(res.PaymentIntentID, res.PaymentStatus); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	return &CheckoutResult{
		OrderID:         o.ID,
		RedirectURL:     res.RedirectURL,
		PaymentStatus:   o.PaymentStatus,
		PaymentIntentID: o.PaymentIntentID,
	}, nil
}

func (s *Service) result(o *order.Order) *CheckoutResult {
	return &CheckoutResult{
		OrderID:         o.ID,
		RedirectURL:     s.redirects.ThankYou(o.ID),
		PaymentStatus:   o.PaymentStatus,
		PaymentIntentID: o.PaymentIntentID,
	}
}

// withKeyLock runs fn holding the (user, configuration) lock when a locker
// is configured. If the lock cannot be had in time fn runs anyway.
func (s *Service) withKeyLock(ctx context.Context, userID string, configurationID uuid.UUID, fn func(context.Context) error) error {
	if s.locker == nil || userID == "" {
		return fn(ctx)
	}
	key := "checkout:" + userID + ":" + configurationID.String()
	release, err := s.acquire(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log(ctx).Warn("checkout lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
		return fn(ctx)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log(ctx).Warn("failed to release checkout lock", zap.String("key", key), zap.Error(err))
		}
	}()
	return fn(ctx)
}

var errLockTimeout = errors.New("timed out waiting for checkout lock")

func (s *Service) acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	deadline := time.Now().Add(s.opts.LockWait)
	for {
		release, ok, err := s.locker.Acquire(ctx, key, s.opts.LockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		if time.Now().After(deadline) {
			return nil, errLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollEvery):
		}
	}
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	if err := shared.PublishPending(ctx, s.eventPublisher, o); err != nil {
		s.log(ctx).Warn("failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func (s *Service) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}

func productName(cfg *design.ResolvedConfiguration) string {
	if cfg.IsCustom() {
		return CustomProductName
	}
	return cfg.Product.Display(func(p *catalog.Product) string { return p.Title })
}
