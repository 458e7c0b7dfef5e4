package checkout

import (
	"context"
	"errors"
	"fmt"

	appdesign "github.com/apparel/storefront/internal/application/design"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusService answers "what happened to my order" for its owner only
type StatusService struct {
	orders   order.Repository
	configs  design.ConfigurationRepository
	resolver *design.Resolver
	users    identity.UserRepository
	logger   *zap.Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(
	orders order.Repository,
	configs design.ConfigurationRepository,
	resolver *design.Resolver,
	users identity.UserRepository,
	logger *zap.Logger,
) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{orders: orders, configs: configs, resolver: resolver, users: users, logger: logger}
}

// GetOrderStatus returns the order joined with its configuration, addresses
// and customer email. Orders of other users are reported as not found.
func (s *StatusService) GetOrderStatus(ctx context.Context, userID string, orderID uuid.UUID) (*OrderStatusResponse, error) {
	if userID == "" {
		return nil, shared.ErrUnauthenticated
	}
	o, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}

	resp := &OrderStatusResponse{
		Resolution: ResolutionOf(o),
		Order:      ToOrderResponse(o),
	}

	cfg, err := s.configs.FindByID(ctx, o.ConfigurationID)
	switch {
	case err == nil:
		resolved, err := s.resolver.Resolve(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve configuration: %w", err)
		}
		view := appdesign.ToConfigurationResponse(resolved)
		resp.Configuration = &view
	case errors.Is(err, shared.ErrNotFound):
		s.logger.Warn("order references a missing configuration",
			zap.String("order_id", o.ID.String()),
			zap.String("configuration_id", o.ConfigurationID.String()),
		)
	default:
		return nil, err
	}

	if s.users != nil {
		user, err := s.users.FindByID(ctx, userID)
		switch {
		case err == nil:
			resp.Email = user.Email
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}
	return resp, nil
}
