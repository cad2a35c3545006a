package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable catalog entry. Pricing and stock live on variants;
// the product-level TrackStock flag gates stock effects together with the
// variant-level flag.
type Product struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID     `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name         string        `gorm:"column:name;not null"`
	IsActive     bool          `gorm:"column:is_active;not null;default:true"`
	TrackStock   bool          `gorm:"column:track_stock;not null;default:true"`
	Variants     []Variant     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	OptionGroups []OptionGroup `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Categories   []Category    `gorm:"many2many:product_categories"`
	Taxes        []Tax         `gorm:"many2many:product_taxes"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
