package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemOption snapshots a selected option and its price delta.
type OrderItemOption struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID uuid.UUID       `gorm:"column:order_item_id;type:uuid;not null;index"`
	OptionID    uuid.UUID       `gorm:"column:option_id;type:uuid;not null"`
	PriceDelta  decimal.Decimal `gorm:"column:price_delta;type:decimal(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
