package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Line is one order line prepared for pricing. UnitPrice already includes
// the per-unit price deltas of the selected options.
type Line struct {
	ProductID   uuid.UUID
	CategoryIDs []uuid.UUID
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Taxes       []models.Tax
}

// AppliedPromotion reports which promotion won a line and its discount.
type AppliedPromotion struct {
	PromotionID uuid.UUID
	Name        string
	Discount    decimal.Decimal
}

// TaxAmount is the per-tax aggregate across all lines.
type TaxAmount struct {
	TaxID  uuid.UUID
	Name   string
	Mode   enums.TaxMode
	Amount decimal.Decimal
}

// Breakdown carries the derived order totals plus the auxiliary per-tax and
// per-promotion detail that is reported but never persisted on the order.
type Breakdown struct {
	Subtotal          decimal.Decimal
	PromotionDiscount decimal.Decimal
	ManualDiscount    decimal.Decimal
	Discount          decimal.Decimal
	InclusiveTax      decimal.Decimal
	ExclusiveTax      decimal.Decimal
	Total             decimal.Decimal
	Taxes             []TaxAmount
	Promotions        []AppliedPromotion
}

// LineSubtotal computes qty × unit price, clamped to zero.
func LineSubtotal(line Line) decimal.Decimal {
	subtotal := line.Qty.Mul(line.UnitPrice)
	if subtotal.IsNegative() {
		return decimal.Zero
	}
	return subtotal
}

// ResolvePromotion picks the single best promotion for a line. Candidates
// must already be in a deterministic order (creation order); the strictly
// largest discount wins and ties keep the earlier candidate. Returns nil
// when no promotion matches or every candidate discounts zero.
func ResolvePromotion(line Line, promotions []models.Promotion, now time.Time) *AppliedPromotion {
	lineSubtotal := LineSubtotal(line)
	if lineSubtotal.IsZero() {
		return nil
	}

	var best *AppliedPromotion
	for _, promo := range promotions {
		if !promo.IsActive || !promo.InWindow(now) {
			continue
		}
		if !scopeMatches(line, promo) {
			continue
		}
		discount := promotionDiscount(line, lineSubtotal, promo)
		if !discount.IsPositive() {
			continue
		}
		if best == nil || discount.GreaterThan(best.Discount) {
			best = &AppliedPromotion{
				PromotionID: promo.ID,
				Name:        promo.Name,
				Discount:    discount,
			}
		}
	}
	return best
}

func scopeMatches(line Line, promo models.Promotion) bool {
	switch promo.AppliesTo {
	case enums.PromotionScopeAll:
		return true
	case enums.PromotionScopeProduct:
		return promo.ProductID != nil && *promo.ProductID == line.ProductID
	case enums.PromotionScopeCategory:
		if promo.CategoryID == nil {
			return false
		}
		for _, categoryID := range line.CategoryIDs {
			if categoryID == *promo.CategoryID {
				return true
			}
		}
	}
	return false
}

func promotionDiscount(line Line, lineSubtotal decimal.Decimal, promo models.Promotion) decimal.Decimal {
	switch promo.Type {
	case enums.PromotionTypePercent:
		pct := promo.Value
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		return lineSubtotal.Mul(pct).Div(hundred)
	case enums.PromotionTypeAmount:
		qty := line.Qty
		if qty.LessThan(decimal.NewFromInt(1)) {
			qty = decimal.NewFromInt(1)
		}
		discount := promo.Value.Mul(qty)
		if discount.GreaterThan(lineSubtotal) {
			return lineSubtotal
		}
		return discount
	}
	return decimal.Zero
}

// lineTaxes applies every active tax on the discounted base, returning the
// raw (unrounded) per-tax amounts. Inclusive taxes are embedded in the base;
// exclusive taxes are added on top by the caller.
func lineTaxes(line Line, base decimal.Decimal) []TaxAmount {
	var amounts []TaxAmount
	for _, tax := range line.Taxes {
		if !tax.IsActive || !tax.Rate.IsPositive() {
			continue
		}
		var amount decimal.Decimal
		switch tax.Mode {
		case enums.TaxModeInclusive:
			amount = base.Mul(tax.Rate).Div(hundred.Add(tax.Rate))
		case enums.TaxModeExclusive:
			amount = base.Mul(tax.Rate).Div(hundred)
		default:
			continue
		}
		amounts = append(amounts, TaxAmount{
			TaxID:  tax.ID,
			Name:   tax.Name,
			Mode:   tax.Mode,
			Amount: amount,
		})
	}
	return amounts
}

// Calculate derives order totals from the lines, the tenant's promotions in
// creation order, and the manual discount. Per-tax amounts accumulate across
// lines and are rounded once at aggregation, not per line.
func Calculate(lines []Line, promotions []models.Promotion, manualDiscount decimal.Decimal, now time.Time) Breakdown {
	if manualDiscount.IsNegative() {
		manualDiscount = decimal.Zero
	}

	subtotal := decimal.Zero
	promotionDiscount := decimal.Zero
	var applied []AppliedPromotion

	taxOrder := make([]uuid.UUID, 0)
	taxTotals := make(map[uuid.UUID]*TaxAmount)

	for _, line := range lines {
		lineSubtotal := LineSubtotal(line)
		subtotal = subtotal.Add(lineSubtotal)

		lineDiscount := decimal.Zero
		if promo := ResolvePromotion(line, promotions, now); promo != nil {
			lineDiscount = promo.Discount
			promotionDiscount = promotionDiscount.Add(promo.Discount)
			applied = append(applied, *promo)
		}

		base := lineSubtotal.Sub(lineDiscount)
		for _, amount := range lineTaxes(line, base) {
			existing, ok := taxTotals[amount.TaxID]
			if !ok {
				taxOrder = append(taxOrder, amount.TaxID)
				copied := amount
				taxTotals[amount.TaxID] = &copied
				continue
			}
			existing.Amount = existing.Amount.Add(amount.Amount)
		}
	}

	inclusiveTax := decimal.Zero
	exclusiveTax := decimal.Zero
	taxes := make([]TaxAmount, 0, len(taxOrder))
	for _, taxID := range taxOrder {
		aggregate := *taxTotals[taxID]
		aggregate.Amount = aggregate.Amount.Round(2)
		taxes = append(taxes, aggregate)
		if aggregate.Mode == enums.TaxModeInclusive {
			inclusiveTax = inclusiveTax.Add(aggregate.Amount)
		} else {
			exclusiveTax = exclusiveTax.Add(aggregate.Amount)
		}
	}

	discount := manualDiscount.Add(promotionDiscount)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	total := subtotal.Sub(discount).Add(exclusiveTax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Breakdown{
		Subtotal:          subtotal.Round(2),
		PromotionDiscount: promotionDiscount.Round(2),
		ManualDiscount:    manualDiscount.Round(2),
		Discount:          discount.Round(2),
		InclusiveTax:      inclusiveTax,
		ExclusiveTax:      exclusiveTax,
		Total:             total.Round(2),
		Taxes:             taxes,
		Promotions:        applied,
	}
}
