package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// Payment records a captured settlement for an order.
type Payment struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:decimal(12,2);not null"`
	Method    enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status    enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'captured'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
