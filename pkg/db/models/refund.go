package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Refund records a full-amount reversal of a paid order.
type Refund struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
