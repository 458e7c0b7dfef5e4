package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errOrderExists rolls back the address rows of a losing CreateIfAbsent
var errOrderExists = errors.New("order already exists for user and configuration")

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withAddresses(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("ShippingAddress").Preload("BillingAddress")
}

func (r *GormOrderRepository) first(query *gorm.DB, args ...any) (*order.Order, error) {
	var model models.OrderModel
	if err := query.First(&model, args...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.first(r.withAddresses(ctx), "id = ?", id)
}

// FindByIDForUser finds an order only if userID placed it.
// Orders of other users are reported as not found.
func (r *GormOrderRepository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*order.Order, error) {
	return r.first(r.withAddresses(ctx).Where("id = ? AND user_id = ?", id, userID))
}

// FindByUserAndConfiguration finds the order for a (user, configuration) key
func (r *GormOrderRepository) FindByUserAndConfiguration(ctx context.Context, userID string, configurationID uuid.UUID) (*order.Order, error) {
	return r.first(r.withAddresses(ctx).Where("user_id = ? AND configuration_id = ?", userID, configurationID))
}

// FindByPaymentIntentID finds an order by its gateway reference
func (r *GormOrderRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*order.Order, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(r.withAddresses(ctx).Where("payment_intent_id = ?", intentID))
}

// CreateIfAbsent inserts the order unless one already exists for its
// (user, configuration) key. The unique index decides the winner; the loser
// inserts nothing and gets false.
func (r *GormOrderRepository) CreateIfAbsent(ctx context.Context, o *order.Order) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAddresses(tx, o.ShippingAddress, o.BillingAddress); err != nil {
			return err
		}

		model := &models.OrderModel{}
		model.FromDomain(o)
		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "configuration_id"}},
				DoNothing: true,
			}).
			Create(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errOrderExists
		}
		return nil
	})
	if errors.Is(err, errOrderExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save updates an existing order with optimistic locking.
// On success o.Version is the stored version.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.OrderModel
		if err := tx.Select("id", "version").First(&current, "id = ?", o.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if current.Version != o.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another request")
		}

		if err := saveAddresses(tx, o.ShippingAddress, o.BillingAddress); err != nil {
			return err
		}

		nextVersion := o.Version + 1
		updatedAt := time.Now()
		updates := map[string]interface{}{
			"amount":              o.Amount,
			"currency":            o.Currency,
			"is_paid":             o.IsPaid,
			"status":              o.Status,
			"payment_method":      o.PaymentMethod,
			"payment_status":      o.PaymentStatus,
			"payment_intent_id":   o.PaymentIntentID,
			"tracking_id":         o.TrackingID,
			"paid_at":             o.PaidAt,
			"shipping_address_id": addressID(o.ShippingAddress),
			"billing_address_id":  addressID(o.BillingAddress),
			"version":             nextVersion,
			"updated_at":          updatedAt,
		}
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, current.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another request")
		}

		o.Version = nextVersion
		o.UpdatedAt = updatedAt
		return nil
	})
}

// FindAll returns a page of orders, newest first unless the filter sorts otherwise
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = page(query, filter.Filter, orderSortColumns)

	var orderModels []models.OrderModel
	if err := query.Preload("ShippingAddress").Preload("BillingAddress").Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter order.ListFilter) *gorm.DB {
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("user_id = ? OR payment_intent_id = ? OR tracking_id = ?", search, search, search)
	}
	return query
}

// SumPaidSince totals the amounts of paid orders created since the given time
func (r *GormOrderRepository) SumPaidSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("is_paid = ? AND created_at >= ?", true, since).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// ExistsPaidForConfiguration checks whether a paid order references the configuration
func (r *GormOrderRepository) ExistsPaidForConfiguration(ctx context.Context, configurationID uuid.UUID) (bool, error) {
	return existsWhere[models.OrderModel](ctx, r.db, "configuration_id = ? AND is_paid = ?", configurationID, true)
}

func saveAddresses(tx *gorm.DB, addresses ...*order.Address) error {
	for _, a := range addresses {
		if a == nil {
			continue
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if err := tx.Save(models.AddressModelFromDomain(a)).Error; err != nil {
			return err
		}
	}
	return nil
}

func addressID(a *order.Address) *uuid.UUID {
	if a == nil {
		return nil
	}
	id := a.ID
	return &id
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
