package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// Promotion is a tenant-scoped discount rule. At most one promotion applies
// per order line; candidates are evaluated in creation order.
type Promotion struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name       string               `gorm:"column:name;not null"`
	Type       enums.PromotionType  `gorm:"column:type;type:text;not null"`
	Value      decimal.Decimal      `gorm:"column:value;type:decimal(12,2);not null"`
	AppliesTo  enums.PromotionScope `gorm:"column:applies_to;type:text;not null;default:'all'"`
	CategoryID *uuid.UUID           `gorm:"column:category_id;type:uuid"`
	ProductID  *uuid.UUID           `gorm:"column:product_id;type:uuid"`
	StartsAt   *time.Time           `gorm:"column:starts_at"`
	EndsAt     *time.Time           `gorm:"column:ends_at"`
	IsActive   bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// InWindow reports whether the promotion window covers the given instant.
// Both bounds are optional.
func (p Promotion) InWindow(now time.Time) bool {
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}
