package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillworks-backend/internal/pricing"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	"github.com/tillworks/tillworks-backend/pkg/pagination"
)

// LineItemInput is one requested line in a capture-time sync. VariantID may
// be omitted; the product's default variant is used then.
type LineItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       decimal.Decimal
	OptionIDs []uuid.UUID
	Note      *string
}

// CaptureInput carries a capture request. A nil LineItems keeps the order's
// current lines; a non-nil slice replaces them before payment.
type CaptureInput struct {
	OrderID   uuid.UUID
	Method    enums.PaymentMethod
	LineItems []LineItemInput
}

// Result pairs the persisted order with the auxiliary pricing breakdown.
// The breakdown (per-tax amounts, applied promotion names) is reported to
// the caller but never stored on the order.
type Result struct {
	Order     *models.Order
	Breakdown pricing.Breakdown
}

// ListInput scopes a paginated order listing.
type ListInput struct {
	Pagination pagination.Params
	Status     *enums.OrderStatus
}

// ListResult is one page of orders plus the cursor for the next one.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}
