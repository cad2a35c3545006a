package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/pkg/db"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/pagination"
)

// Repository manages persistence for orders, their lines, and the payment
// and refund records hanging off them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	Lock(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	List(ctx context.Context, tenantID, storeID uuid.UUID, input ListInput) ([]models.Order, error)
	CreateItem(ctx context.Context, item *models.OrderItem) error
	UpdateItemQty(ctx context.Context, item *models.OrderItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateRefund(ctx context.Context, refund *models.Refund) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Items.Options").
		Preload("Payments").
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Lock acquires the order row under FOR UPDATE, then loads the aggregate.
// Concurrent captures and refunds on the same order serialize here.
func (r *repository) Lock(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	var row models.Order
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.Get(ctx, tenantID, orderID)
}

func (r *repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	updates := map[string]any{
		"status":          order.Status,
		"customer_id":     order.CustomerID,
		"shift_id":        order.ShiftID,
		"store_id":        order.StoreID,
		"subtotal":        order.Subtotal,
		"discount":        order.Discount,
		"manual_discount": order.ManualDiscount,
		"tax":             order.Tax,
		"total":           order.Total,
		"refunded_total":  order.RefundedTotal,
		"payment_method":  order.PaymentMethod,
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, tenantID, storeID uuid.UUID, input ListInput) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit))

	if input.Status != nil {
		query = query.Where("status = ?", *input.Status)
	}
	if cursor, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItemQty(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"qty":         item.Qty,
			"cogs_amount": item.CogsAmount,
		}).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("order_item_id = ?", itemID).
		Delete(&models.OrderItemOption{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.OrderItem{}).Error
}

// ReplaceItems deletes the order's current lines and inserts the new set
// with their option snapshots.
func (r *repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	err := r.db.WithContext(ctx).
		Where("order_item_id IN (?)", r.db.
			Model(&models.OrderItem{}).
			Select("id").
			Where("order_id = ?", orderID)).
		Delete(&models.OrderItemOption{}).Error
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		if err := r.db.WithContext(ctx).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) CreateRefund(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}
