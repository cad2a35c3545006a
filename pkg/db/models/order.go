package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// Order is the transactional aggregate of the register flow. Totals are
// derived fields recomputed after every mutation; Tax holds the exclusive
// portion that was added on top of the discounted subtotal.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index"`
	StoreID        uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	CashierID      uuid.UUID            `gorm:"column:cashier_id;type:uuid;not null"`
	CustomerID     *uuid.UUID           `gorm:"column:customer_id;type:uuid"`
	ShiftID        *uuid.UUID           `gorm:"column:shift_id;type:uuid;index"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'draft'"`
	Subtotal       decimal.Decimal      `gorm:"column:subtotal;type:decimal(12,2);not null;default:0"`
	Discount       decimal.Decimal      `gorm:"column:discount;type:decimal(12,2);not null;default:0"`
	ManualDiscount decimal.Decimal      `gorm:"column:manual_discount;type:decimal(12,2);not null;default:0"`
	Tax            decimal.Decimal      `gorm:"column:tax;type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal      `gorm:"column:total;type:decimal(12,2);not null;default:0"`
	RefundedTotal  decimal.Decimal      `gorm:"column:refunded_total;type:decimal(12,2);not null;default:0"`
	PaymentMethod  *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments       []Payment            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
