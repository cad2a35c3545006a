package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots one line of an order. UnitPrice and CogsAmount are
// captured at add/sync time so later catalog edits never rewrite history.
type OrderItem struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	VariantID  uuid.UUID         `gorm:"column:variant_id;type:uuid;not null"`
	Qty        decimal.Decimal   `gorm:"column:qty;type:decimal(12,3);not null"`
	UnitPrice  decimal.Decimal   `gorm:"column:unit_price;type:decimal(12,2);not null"`
	CogsAmount decimal.Decimal   `gorm:"column:cogs_amount;type:decimal(12,2);not null;default:0"`
	Note       *string           `gorm:"column:note"`
	Options    []OrderItemOption `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
