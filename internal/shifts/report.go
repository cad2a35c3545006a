package shifts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// Report is the reconciliation view of a shift, recomputed purely from
// persisted history. No running total is ever stored, so the report cannot
// drift from the underlying rows.
type Report struct {
	ShiftID       uuid.UUID        `json:"shift_id"`
	RegisterID    uuid.UUID        `json:"register_id"`
	OpenedAt      time.Time        `json:"opened_at"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
	OpeningFloat  decimal.Decimal  `json:"opening_float"`
	ClosingCash   *decimal.Decimal `json:"closing_cash,omitempty"`
	SalesCount    int              `json:"sales_count"`
	GrossSales    decimal.Decimal  `json:"gross_sales"`
	RefundTotal   decimal.Decimal  `json:"refund_total"`
	Net           decimal.Decimal  `json:"net"`
	CashSales     decimal.Decimal  `json:"cash_sales"`
	CashRefunds   decimal.Decimal  `json:"cash_refunds"`
	CashIn        decimal.Decimal  `json:"cash_in"`
	CashOut       decimal.Decimal  `json:"cash_out"`
	ExpectedCash  decimal.Decimal  `json:"expected_cash"`
	CashOverShort *decimal.Decimal `json:"cash_over_short,omitempty"`
}

// buildReport folds the shift's orders and cash movements into a Report.
func buildReport(shift *models.Shift, orders []models.Order, movements []models.CashMovement) *Report {
	report := &Report{
		ShiftID:      shift.ID,
		RegisterID:   shift.RegisterID,
		OpenedAt:     shift.OpenedAt,
		ClosedAt:     shift.ClosedAt,
		OpeningFloat: shift.OpeningFloat,
		ClosingCash:  shift.ClosingCash,
		GrossSales:   decimal.Zero,
		RefundTotal:  decimal.Zero,
		CashSales:    decimal.Zero,
		CashRefunds:  decimal.Zero,
		CashIn:       decimal.Zero,
		CashOut:      decimal.Zero,
	}

	for i := range orders {
		order := &orders[i]
		switch order.Status {
		case enums.OrderStatusPaid:
			report.SalesCount++
			report.GrossSales = report.GrossSales.Add(order.Total)
			report.CashSales = report.CashSales.Add(cashPaid(order))
		case enums.OrderStatusRefunded:
			report.RefundTotal = report.RefundTotal.Add(order.RefundedTotal)
			// The captured cash still entered the drawer before it was
			// refunded back out, so both sides of the round trip count.
			report.CashSales = report.CashSales.Add(cashPaid(order))
			if isCashOrder(order) {
				report.CashRefunds = report.CashRefunds.Add(order.RefundedTotal)
			}
		}
	}

	for _, movement := range movements {
		switch movement.Type {
		case enums.CashMovementTypeIn:
			report.CashIn = report.CashIn.Add(movement.Amount)
		case enums.CashMovementTypeOut:
			report.CashOut = report.CashOut.Add(movement.Amount)
		}
	}

	report.Net = report.GrossSales.Sub(report.RefundTotal)
	report.ExpectedCash = shift.OpeningFloat.
		Add(report.CashIn).
		Sub(report.CashOut).
		Add(report.CashSales).
		Sub(report.CashRefunds)

	if shift.ClosedAt != nil && shift.ClosingCash != nil {
		overShort := shift.ClosingCash.Sub(report.ExpectedCash)
		report.CashOverShort = &overShort
	}
	return report
}

// cashPaid sums the order's cash payments, falling back to the order total
// when no payment row exists for a cash-method order.
func cashPaid(order *models.Order) decimal.Decimal {
	if len(order.Payments) == 0 {
		if isCashOrder(order) {
			return order.Total
		}
		return decimal.Zero
	}
	total := decimal.Zero
	for _, payment := range order.Payments {
		if payment.Method == enums.PaymentMethodCash {
			total = total.Add(payment.Amount)
		}
	}
	return total
}

func isCashOrder(order *models.Order) bool {
	return order.PaymentMethod != nil && *order.PaymentMethod == enums.PaymentMethodCash
}
