package shifts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/pkg/db"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
)

// Repository manages persistence for shifts and their cash movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shift *models.Shift) error
	Get(ctx context.Context, tenantID, shiftID uuid.UUID) (*models.Shift, error)
	Lock(ctx context.Context, tenantID, shiftID uuid.UUID) (*models.Shift, error)
	GetOpenByRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*models.Shift, error)
	Close(ctx context.Context, shiftID uuid.UUID, closedAt time.Time, closingCash decimal.Decimal) (bool, error)
	CreateMovement(ctx context.Context, movement *models.CashMovement) error
	ListMovements(ctx context.Context, shiftID uuid.UUID) ([]models.CashMovement, error)
	ListOrders(ctx context.Context, shiftID uuid.UUID) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shifts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shift *models.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *repository) Get(ctx context.Context, tenantID, shiftID uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, shiftID).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (r *repository) Lock(ctx context.Context, tenantID, shiftID uuid.UUID) (*models.Shift, error) {
	var row models.Shift
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, shiftID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.Get(ctx, tenantID, shiftID)
}

func (r *repository) GetOpenByRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND register_id = ? AND closed_at IS NULL", tenantID, registerID).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

// Close sets closed_at/closing_cash guarded on the shift still being open,
// reporting whether a row was actually closed.
func (r *repository) Close(ctx context.Context, shiftID uuid.UUID, closedAt time.Time, closingCash decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("id = ? AND closed_at IS NULL", shiftID).
		Updates(map[string]any{
			"closed_at":    closedAt,
			"closing_cash": closingCash,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.CashMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, shiftID uuid.UUID) ([]models.CashMovement, error) {
	var movements []models.CashMovement
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC, id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) ListOrders(ctx context.Context, shiftID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("shift_id = ?", shiftID).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
