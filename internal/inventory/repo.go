package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/pkg/db"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
)

// Repository manages the stock balance projection and its append-only ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetStockLevel(ctx context.Context, tenantID, storeID, variantID uuid.UUID) (*models.StockLevel, error)
	LockStockLevel(ctx context.Context, tenantID, storeID, variantID uuid.UUID) (*models.StockLevel, error)
	CreateStockLevel(ctx context.Context, level *models.StockLevel) error
	UpdateStockLevelQty(ctx context.Context, levelID uuid.UUID, qty decimal.Decimal) error
	CreateStockEntry(ctx context.Context, entry *models.StockEntry) error
	SumEntries(ctx context.Context, tenantID, storeID, variantID uuid.UUID) (decimal.Decimal, error)
	ListEntries(ctx context.Context, tenantID, storeID, variantID uuid.UUID) ([]models.StockEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetStockLevel(ctx context.Context, tenantID, storeID, variantID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND variant_id = ?", tenantID, storeID, variantID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// LockStockLevel reads the balance row under FOR UPDATE so that concurrent
// adjustments on the same key serialize.
func (r *repository) LockStockLevel(ctx context.Context, tenantID, storeID, variantID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND store_id = ? AND variant_id = ?", tenantID, storeID, variantID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

func (r *repository) CreateStockLevel(ctx context.Context, level *models.StockLevel) error {
	return r.db.WithContext(ctx).Create(level).Error
}

func (r *repository) UpdateStockLevelQty(ctx context.Context, levelID uuid.UUID, qty decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.StockLevel{}).
		Where("id = ?", levelID).
		Update("qty_on_hand", qty).Error
}

func (r *repository) CreateStockEntry(ctx context.Context, entry *models.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) SumEntries(ctx context.Context, tenantID, storeID, variantID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Select("COALESCE(SUM(qty_delta), 0) AS total").
		Where("tenant_id = ? AND store_id = ? AND variant_id = ?", tenantID, storeID, variantID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *repository) ListEntries(ctx context.Context, tenantID, storeID, variantID uuid.UUID) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND variant_id = ?", tenantID, storeID, variantID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
