package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// User is a tenant member. Cashiers may be pinned to a single store.
type User struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	Role      enums.MemberRole `gorm:"column:role;type:text;not null;default:'cashier'"`
	StoreID   *uuid.UUID       `gorm:"column:store_id;type:uuid"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
