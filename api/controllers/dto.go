package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillworks-backend/internal/orders"
	"github.com/tillworks/tillworks-backend/internal/pricing"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
)

// Response payloads own the JSON shape; the gorm models stay serialization-free.

type orderPayload struct {
	ID             uuid.UUID        `json:"id"`
	Status         string           `json:"status"`
	StoreID        uuid.UUID        `json:"store_id"`
	CashierID      uuid.UUID        `json:"cashier_id"`
	CustomerID     *uuid.UUID       `json:"customer_id,omitempty"`
	ShiftID        *uuid.UUID       `json:"shift_id,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Discount       decimal.Decimal  `json:"discount"`
	ManualDiscount decimal.Decimal  `json:"manual_discount"`
	Tax            decimal.Decimal  `json:"tax"`
	Total          decimal.Decimal  `json:"total"`
	RefundedTotal  decimal.Decimal  `json:"refunded_total"`
	PaymentMethod  *string          `json:"payment_method,omitempty"`
	Items          []itemPayload    `json:"items"`
	Payments       []paymentPayload `json:"payments,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type itemPayload struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Note      *string         `json:"note,omitempty"`
	Options   []optionPayload `json:"options,omitempty"`
}

type optionPayload struct {
	OptionID   uuid.UUID       `json:"option_id"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

type paymentPayload struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type breakdownPayload struct {
	Subtotal          decimal.Decimal           `json:"subtotal"`
	PromotionDiscount decimal.Decimal           `json:"promotion_discount"`
	ManualDiscount    decimal.Decimal           `json:"manual_discount"`
	Discount          decimal.Decimal           `json:"discount"`
	InclusiveTax      decimal.Decimal           `json:"inclusive_tax"`
	ExclusiveTax      decimal.Decimal           `json:"exclusive_tax"`
	Total             decimal.Decimal           `json:"total"`
	Taxes             []taxAmountPayload        `json:"taxes,omitempty"`
	Promotions        []appliedPromotionPayload `json:"promotions,omitempty"`
}

type taxAmountPayload struct {
	TaxID  uuid.UUID       `json:"tax_id"`
	Name   string          `json:"name"`
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

type appliedPromotionPayload struct {
	PromotionID uuid.UUID       `json:"promotion_id"`
	Name        string          `json:"name"`
	Discount    decimal.Decimal `json:"discount"`
}

type orderResultPayload struct {
	Order     orderPayload     `json:"order"`
	Breakdown breakdownPayload `json:"breakdown"`
}

type shiftPayload struct {
	ID           uuid.UUID             `json:"id"`
	StoreID      uuid.UUID             `json:"store_id"`
	RegisterID   uuid.UUID             `json:"register_id"`
	UserID       uuid.UUID             `json:"user_id"`
	OpenedAt     time.Time             `json:"opened_at"`
	ClosedAt     *time.Time            `json:"closed_at,omitempty"`
	OpeningFloat decimal.Decimal       `json:"opening_float"`
	ClosingCash  *decimal.Decimal      `json:"closing_cash,omitempty"`
	Movements    []cashMovementPayload `json:"movements,omitempty"`
}

type cashMovementPayload struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    *string         `json:"reason,omitempty"`
	CreatedBy uuid.UUID       `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

func toOrderPayload(order *models.Order) orderPayload {
	payload := orderPayload{
		ID:             order.ID,
		Status:         string(order.Status),
		StoreID:        order.StoreID,
		CashierID:      order.CashierID,
		CustomerID:     order.CustomerID,
		ShiftID:        order.ShiftID,
		Subtotal:       order.Subtotal,
		Discount:       order.Discount,
		ManualDiscount: order.ManualDiscount,
		Tax:            order.Tax,
		Total:          order.Total,
		RefundedTotal:  order.RefundedTotal,
		Items:          make([]itemPayload, 0, len(order.Items)),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.PaymentMethod != nil {
		method := string(*order.PaymentMethod)
		payload.PaymentMethod = &method
	}
	for _, item := range order.Items {
		entry := itemPayload{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Note:      item.Note,
		}
		for _, opt := range item.Options {
			entry.Options = append(entry.Options, optionPayload{OptionID: opt.OptionID, PriceDelta: opt.PriceDelta})
		}
		payload.Items = append(payload.Items, entry)
	}
	for _, payment := range order.Payments {
		payload.Payments = append(payload.Payments, paymentPayload{
			ID:        payment.ID,
			Amount:    payment.Amount,
			Method:    string(payment.Method),
			Status:    string(payment.Status),
			CreatedAt: payment.CreatedAt,
		})
	}
	return payload
}

func toBreakdownPayload(b pricing.Breakdown) breakdownPayload {
	payload := breakdownPayload{
		Subtotal:          b.Subtotal,
		PromotionDiscount: b.PromotionDiscount,
		ManualDiscount:    b.ManualDiscount,
		Discount:          b.Discount,
		InclusiveTax:      b.InclusiveTax,
		ExclusiveTax:      b.ExclusiveTax,
		Total:             b.Total,
	}
	for _, tax := range b.Taxes {
		payload.Taxes = append(payload.Taxes, taxAmountPayload{
			TaxID:  tax.TaxID,
			Name:   tax.Name,
			Mode:   string(tax.Mode),
			Amount: tax.Amount,
		})
	}
	for _, promo := range b.Promotions {
		payload.Promotions = append(payload.Promotions, appliedPromotionPayload{
			PromotionID: promo.PromotionID,
			Name:        promo.Name,
			Discount:    promo.Discount,
		})
	}
	return payload
}

func toOrderResultPayload(result *orders.Result) orderResultPayload {
	return orderResultPayload{
		Order:     toOrderPayload(result.Order),
		Breakdown: toBreakdownPayload(result.Breakdown),
	}
}

func toShiftPayload(shift *models.Shift) shiftPayload {
	payload := shiftPayload{
		ID:           shift.ID,
		StoreID:      shift.StoreID,
		RegisterID:   shift.RegisterID,
		UserID:       shift.UserID,
		OpenedAt:     shift.OpenedAt,
		ClosedAt:     shift.ClosedAt,
		OpeningFloat: shift.OpeningFloat,
		ClosingCash:  shift.ClosingCash,
	}
	for _, movement := range shift.Movements {
		payload.Movements = append(payload.Movements, toCashMovementPayload(movement))
	}
	return payload
}

func toCashMovementPayload(movement models.CashMovement) cashMovementPayload {
	return cashMovementPayload{
		ID:        movement.ID,
		Type:      string(movement.Type),
		Amount:    movement.Amount,
		Reason:    movement.Reason,
		CreatedBy: movement.CreatedBy,
		CreatedAt: movement.CreatedAt,
	}
}
