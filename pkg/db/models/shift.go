package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift is a cashier's open-to-close session on a register. A nil ClosedAt
// means the shift is open; at most one open shift may exist per register,
// enforced by a partial unique index on (register_id) WHERE closed_at IS NULL.
type Shift struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	StoreID      uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	RegisterID   uuid.UUID        `gorm:"column:register_id;type:uuid;not null;index"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	OpenedAt     time.Time        `gorm:"column:opened_at;not null"`
	ClosedAt     *time.Time       `gorm:"column:closed_at"`
	OpeningFloat decimal.Decimal  `gorm:"column:opening_float;type:decimal(12,2);not null;default:0"`
	ClosingCash  *decimal.Decimal `gorm:"column:closing_cash;type:decimal(12,2)"`
	Movements    []CashMovement   `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the shift has not been closed yet.
func (s Shift) IsOpen() bool {
	return s.ClosedAt == nil
}
