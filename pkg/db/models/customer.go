package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an optional loyalty identity for an order.
type Customer struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name          string    `gorm:"column:name;not null"`
	LoyaltyPoints int64     `gorm:"column:loyalty_points;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
