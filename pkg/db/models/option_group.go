package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// OptionGroup bounds how many options may be selected per line item.
// Single groups allow at most one selection; multiple groups enforce
// MinSelect/MaxSelect (MaxSelect 0 means unbounded).
type OptionGroup struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	Name          string              `gorm:"column:name;not null"`
	SelectionType enums.SelectionType `gorm:"column:selection_type;type:text;not null;default:'single'"`
	MinSelect     int                 `gorm:"column:min_select;not null;default:0"`
	MaxSelect     int                 `gorm:"column:max_select;not null;default:0"`
	Options       []Option            `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
