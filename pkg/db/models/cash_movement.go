package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// CashMovement is an immutable drawer event. Reconciliation sums these rows;
// no running balance field exists to drift.
type CashMovement struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShiftID   uuid.UUID              `gorm:"column:shift_id;type:uuid;not null;index"`
	Type      enums.CashMovementType `gorm:"column:type;type:text;not null"`
	Amount    decimal.Decimal        `gorm:"column:amount;type:decimal(12,2);not null"`
	Reason    *string                `gorm:"column:reason"`
	CreatedBy uuid.UUID              `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
