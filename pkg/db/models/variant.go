package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the sellable unit of a product, carrying its own price, cost,
// and stock-tracking flag. Exactly one variant per product is the default.
type Variant struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	Cost       decimal.Decimal `gorm:"column:cost;type:decimal(12,2);not null;default:0"`
	TrackStock bool            `gorm:"column:track_stock;not null;default:true"`
	IsDefault  bool            `gorm:"column:is_default;not null;default:false"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
