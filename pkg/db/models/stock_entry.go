package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// StockEntry is one immutable line of the inventory ledger. Entries are
// never updated or deleted; the balance is always the sum of entries for
// the same (tenant, store, variant) key.
type StockEntry struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index:idx_stock_entries_key,priority:1"`
	StoreID   uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index:idx_stock_entries_key,priority:2"`
	VariantID uuid.UUID         `gorm:"column:variant_id;type:uuid;not null;index:idx_stock_entries_key,priority:3"`
	QtyDelta  decimal.Decimal   `gorm:"column:qty_delta;type:decimal(12,3);not null"`
	Reason    enums.StockReason `gorm:"column:reason;type:text;not null"`
	RefType   *string           `gorm:"column:ref_type"`
	RefID     *uuid.UUID        `gorm:"column:ref_id;type:uuid"`
	UserID    *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	Note      *string           `gorm:"column:note"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
