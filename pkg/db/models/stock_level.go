package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel caches the current on-hand balance per (tenant, store, variant).
// The stock entry ledger is the source of truth; this row is a projection
// maintained in the same transaction as every ledger write.
type StockLevel struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_stock_levels_key,priority:1"`
	StoreID   uuid.UUID       `gorm:"column:store_id;type:uuid;not null;uniqueIndex:uq_stock_levels_key,priority:2"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:uq_stock_levels_key,priority:3"`
	QtyOnHand decimal.Decimal `gorm:"column:qty_on_hand;type:decimal(12,3);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
