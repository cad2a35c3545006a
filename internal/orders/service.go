package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/internal/catalog"
	"github.com/tillworks/tillworks-backend/internal/inventory"
	"github.com/tillworks/tillworks-backend/internal/pricing"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	"github.com/tillworks/tillworks-backend/pkg/config"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
	"github.com/tillworks/tillworks-backend/pkg/metrics"
	"github.com/tillworks/tillworks-backend/pkg/pagination"
)

const stockRefTypeOrder = "order"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// stockLedger is the slice of the inventory service the order engine uses:
// advisory balance reads and in-transaction deltas at capture/refund time.
type stockLedger interface {
	GetOnHand(ctx context.Context, act actor.Actor, variantID uuid.UUID) (decimal.Decimal, error)
	ApplyDelta(ctx context.Context, tx *gorm.DB, act actor.Actor, input inventory.AdjustInput) (decimal.Decimal, error)
}

// Service is the order engine: the draft → paid → refunded lifecycle with
// derived totals recomputed after every mutation.
type Service interface {
	CreateDraft(ctx context.Context, act actor.Actor) (*Result, error)
	Get(ctx context.Context, act actor.Actor, orderID uuid.UUID) (*Result, error)
	List(ctx context.Context, act actor.Actor, input ListInput) (*ListResult, error)
	AddItem(ctx context.Context, act actor.Actor, orderID, variantID uuid.UUID, qty decimal.Decimal) (*Result, error)
	Checkout(ctx context.Context, act actor.Actor, orderID uuid.UUID) (*Result, error)
	ApplyDiscount(ctx context.Context, act actor.Actor, orderID uuid.UUID, amount decimal.Decimal) (*Result, error)
	SetCustomer(ctx context.Context, act actor.Actor, orderID, customerID uuid.UUID) (*Result, error)
	Capture(ctx context.Context, act actor.Actor, input CaptureInput) (*Result, error)
	Refund(ctx context.Context, act actor.Actor, orderID uuid.UUID) (*Result, error)
}

type service struct {
	repo      Repository
	catalog   catalog.Repository
	stockRepo inventory.Repository
	stock     stockLedger
	tx        txRunner
	loyalty   config.LoyaltyConfig
	logg      *logger.Logger
	metrics   *metrics.POSMetrics
}

// NewService wires the order engine with its collaborators.
func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	stockRepo inventory.Repository,
	stock stockLedger,
	tx txRunner,
	loyalty config.LoyaltyConfig,
	logg *logger.Logger,
	posMetrics *metrics.POSMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if stockRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		catalog:   catalogRepo,
		stockRepo: stockRepo,
		stock:     stock,
		tx:        tx,
		loyalty:   loyalty,
		logg:      logg,
		metrics:   posMetrics,
	}, nil
}

// CreateDraft resolves the acting store, rejects cashiers pinned to another
// store, and opens an empty draft with zeroed totals.
func (s *service) CreateDraft(ctx context.Context, act actor.Actor) (*Result, error) {
	if err := act.ValidateTenant(); err != nil {
		return nil, err
	}
	if act.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)
		user, err := catalogRepo.GetUser(ctx, act.TenantID, act.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
		}
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}

		storeID := act.StoreID
		if storeID == uuid.Nil && user.StoreID != nil {
			storeID = *user.StoreID
		}
		if storeID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "no store could be resolved")
		}
		if user.Role == enums.MemberRoleCashier && user.StoreID != nil && *user.StoreID != storeID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cashier is assigned to a different store")
		}

		order := &models.Order{
			ID:             uuid.New(),
			TenantID:       act.TenantID,
			StoreID:        storeID,
			CashierID:      act.UserID,
			Status:         enums.OrderStatusDraft,
			Subtotal:       decimal.Zero,
			Discount:       decimal.Zero,
			ManualDiscount: decimal.Zero,
			Tax:            decimal.Zero,
			Total:          decimal.Zero,
			RefundedTotal:  decimal.Zero,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		breakdown, err := s.recalculate(ctx, tx, act, order)
		if err != nil {
			return err
		}
		result = &Result{Order: order, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, act actor.Actor, orderID uuid.UUID) (*Result, error) {
	if err := act.ValidateTenant(); err != nil {
		return nil, err
	}
	order, err := s.repo.Get(ctx, act.TenantID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	breakdown, err := s.previewBreakdown(ctx, s.catalog, act, order)
	if err != nil {
		return nil, err
	}
	return &Result{Order: order, Breakdown: breakdown}, nil
}

func (s *service) List(ctx context.Context, act actor.Actor, input ListInput) (*ListResult, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}

	orders, err := s.repo.List(ctx, act.TenantID, act.StoreID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	next := ""
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &ListResult{Orders: orders, NextCursor: next}, nil
}

// AddItem merges quantity into an existing line for the variant or starts a
// new one, deleting the line when the merged quantity reaches zero. Stock is
// checked advisorily only; the authoritative check happens at capture.
func (s *service) AddItem(ctx context.Context, act actor.Actor, orderID, variantID uuid.UUID, qty decimal.Decimal) (*Result, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := s.lockModifiable(ctx, repo, act, orderID)
		if err != nil {
			return err
		}
		if order.StoreID != act.StoreID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order belongs to a different store")
		}

		variant, err := catalogRepo.GetVariant(ctx, variantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
		}
		if variant == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		product, err := catalogRepo.GetProduct(ctx, act.TenantID, variant.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is inactive")
		}

		var existing *models.OrderItem
		for i := range order.Items {
			if order.Items[i].VariantID == variantID {
				existing = &order.Items[i]
				break
			}
		}

		merged := qty
		if existing != nil {
			merged = existing.Qty.Add(qty)
		}

		switch {
		case existing == nil && !qty.IsPositive():
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		case existing != nil && !merged.IsPositive():
			if err := repo.DeleteItem(ctx, existing.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting order item")
			}
		default:
			if qty.IsPositive() && variant.TrackStock && product.TrackStock {
				onHand, err := s.stock.GetOnHand(ctx, act, variantID)
				if err != nil {
					return err
				}
				if merged.GreaterThan(onHand) {
					return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
						WithDetails(map[string]any{
							"variant_id": variantID.String(),
							"on_hand":    onHand.String(),
							"requested":  merged.String(),
						})
				}
			}
			if existing != nil {
				existing.Qty = merged
				existing.CogsAmount = variant.Cost.Mul(merged)
				if err := repo.UpdateItemQty(ctx, existing); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order item")
				}
			} else {
				item := &models.OrderItem{
					ID:         uuid.New(),
					OrderID:    order.ID,
					ProductID:  product.ID,
					VariantID:  variant.ID,
					Qty:        merged,
					UnitPrice:  variant.Price,
					CogsAmount: variant.Cost.Mul(merged),
				}
				if err := repo.CreateItem(ctx, item); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order item")
				}
			}
		}

		order, err = repo.Get(ctx, act.TenantID, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
		}
		breakdown, err := s.recalculate(ctx, tx, act, order)
		if err != nil {
			return err
		}
		result = &Result{Order: order, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Checkout recalculates and persists the totals without changing state.
func (s *service) Checkout(ctx context.Context, act actor.Actor, orderID uuid.UUID) (*Result, error) {
	return s.mutateOrder(ctx, act, orderID, func(tx *gorm.DB, order *models.Order) error {
		return nil
	})
}

func (s *service) ApplyDiscount(ctx context.Context, act actor.Actor, orderID uuid.UUID, amount decimal.Decimal) (*Result, error) {
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	return s.mutateOrder(ctx, act, orderID, func(tx *gorm.DB, order *models.Order) error {
		order.ManualDiscount = amount
		return nil
	})
}

// SetCustomer associates exactly one customer with the order, replacing any
// prior association.
func (s *service) SetCustomer(ctx context.Context, act actor.Actor, orderID, customerID uuid.UUID) (*Result, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.mutateOrder(ctx, act, orderID, func(tx *gorm.DB, order *models.Order) error {
		customer, err := s.catalog.WithTx(tx).GetCustomer(ctx, act.TenantID, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
		}
		if customer == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		order.CustomerID = &customer.ID
		return nil
	})
}

// mutateOrder locks the order, applies the mutation, and recalculates.
func (s *service) mutateOrder(ctx context.Context, act actor.Actor, orderID uuid.UUID, mutate func(tx *gorm.DB, order *models.Order) error) (*Result, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockModifiable(ctx, repo, act, orderID)
		if err != nil {
			return err
		}
		if err := mutate(tx, order); err != nil {
			return err
		}
		breakdown, err := s.recalculate(ctx, tx, act, order)
		if err != nil {
			return err
		}
		result = &Result{Order: order, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Capture settles the order. A second capture on an already-paid order is a
// no-op returning the current state: no second payment, no second decrement.
func (s *service) Capture(ctx context.Context, act actor.Actor, input CaptureInput) (*Result, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	start := time.Now()
	captured := false
	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := repo.Lock(ctx, act.TenantID, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.StoreID != act.StoreID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order belongs to a different store")
		}
		if order.Status == enums.OrderStatusRefunded {
			return pkgerrors.New(pkgerrors.CodeValidation, "refunded orders cannot be captured")
		}
		if order.Status == enums.OrderStatusPaid {
			breakdown, err := s.previewBreakdown(ctx, catalogRepo, act, order)
			if err != nil {
				return err
			}
			result = &Result{Order: order, Breakdown: breakdown}
			return nil
		}

		if input.LineItems != nil {
			if err := s.syncLineItems(ctx, tx, act, order, input.LineItems); err != nil {
				return err
			}
			order, err = repo.Get(ctx, act.TenantID, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
			}
		}

		breakdown, err := s.recalculate(ctx, tx, act, order)
		if err != nil {
			return err
		}

		payment := &models.Payment{
			ID:      uuid.New(),
			OrderID: order.ID,
			Amount:  order.Total,
			Method:  input.Method,
			Status:  enums.PaymentStatusCaptured,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
		}

		if err := s.applyStockDeltas(ctx, tx, act, order, enums.StockReasonSale); err != nil {
			return err
		}

		method := input.Method
		order.Status = enums.OrderStatusPaid
		order.PaymentMethod = &method
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order")
		}

		if s.loyalty.Enabled && order.CustomerID != nil {
			points := order.Total.Floor().IntPart()
			if points > 0 {
				if err := catalogRepo.AddLoyaltyPoints(ctx, *order.CustomerID, points); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "awarding loyalty points")
				}
			}
		}

		order.Payments = append(order.Payments, *payment)
		captured = true
		result = &Result{Order: order, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if captured {
		s.metrics.ObserveCapture(string(input.Method), time.Since(start))
	}
	return result, nil
}

// Refund reverses a paid order in full: one refund record, the stock put
// back, and the terminal refunded state.
func (s *service) Refund(ctx context.Context, act actor.Actor, orderID uuid.UUID) (*Result, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.Lock(ctx, act.TenantID, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.StoreID != act.StoreID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order belongs to a different store")
		}
		if order.Status != enums.OrderStatusPaid {
			return pkgerrors.New(pkgerrors.CodeValidation, "only paid orders can be refunded")
		}

		refund := &models.Refund{
			ID:      uuid.New(),
			OrderID: order.ID,
			Amount:  order.Total,
			UserID:  act.UserID,
		}
		if err := repo.CreateRefund(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating refund")
		}

		if err := s.applyStockDeltas(ctx, tx, act, order, enums.StockReasonRefund); err != nil {
			return err
		}

		order.RefundedTotal = order.Total
		order.Status = enums.OrderStatusRefunded
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order")
		}

		breakdown, err := s.previewBreakdown(ctx, s.catalog.WithTx(tx), act, order)
		if err != nil {
			return err
		}
		result = &Result{Order: order, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncRefund()
	return result, nil
}

// lockModifiable locks the order and rejects mutations on terminal state.
// Draft and paid orders both remain mutable; paid re-adds are used by
// downstream flows.
func (s *service) lockModifiable(ctx context.Context, repo Repository, act actor.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.Lock(ctx, act.TenantID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refunded orders are immutable")
	}
	return order, nil
}

// syncLineItems fully replaces the order's lines: resolves each product and
// variant, enforces option-group selection rules, and performs one
// authoritative stock check per variant under lock before any write.
func (s *service) syncLineItems(ctx context.Context, tx *gorm.DB, act actor.Actor, order *models.Order, inputs []LineItemInput) error {
	catalogRepo := s.catalog.WithTx(tx)

	newItems := make([]models.OrderItem, 0, len(inputs))
	required := make(map[uuid.UUID]decimal.Decimal)

	for _, input := range inputs {
		if !input.Qty.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}

		product, err := catalogRepo.GetProduct(ctx, act.TenantID, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is inactive").
				WithDetails(map[string]any{"product_id": product.ID.String()})
		}

		var variant *models.Variant
		if input.VariantID != nil {
			variant = catalog.FindVariant(product, *input.VariantID)
		} else {
			variant = catalog.DefaultVariant(product)
		}
		if variant == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}

		options, err := resolveOptions(product, input.OptionIDs)
		if err != nil {
			return err
		}

		item := models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ProductID:  product.ID,
			VariantID:  variant.ID,
			Qty:        input.Qty,
			UnitPrice:  variant.Price,
			CogsAmount: variant.Cost.Mul(input.Qty),
			Note:       input.Note,
		}
		for _, opt := range options {
			item.Options = append(item.Options, models.OrderItemOption{
				ID:          uuid.New(),
				OrderItemID: item.ID,
				OptionID:    opt.ID,
				PriceDelta:  opt.PriceDelta,
			})
		}
		newItems = append(newItems, item)

		if variant.TrackStock && product.TrackStock {
			required[variant.ID] = required[variant.ID].Add(input.Qty)
		}
	}

	stockRepo := s.stockRepo.WithTx(tx)
	for variantID, qty := range required {
		level, err := stockRepo.LockStockLevel(ctx, act.TenantID, act.StoreID, variantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking stock level")
		}
		onHand := decimal.Zero
		if level != nil {
			onHand = level.QtyOnHand
		}
		if qty.GreaterThan(onHand) {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
				WithDetails(map[string]any{
					"variant_id": variantID.String(),
					"on_hand":    onHand.String(),
					"requested":  qty.String(),
				})
		}
	}

	if err := s.repo.WithTx(tx).ReplaceItems(ctx, order.ID, newItems); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing order items")
	}
	return nil
}

// resolveOptions validates the selected option ids against the product's
// option groups and returns the matched options.
func resolveOptions(product *models.Product, optionIDs []uuid.UUID) ([]models.Option, error) {
	type optionRef struct {
		option models.Option
		group  *models.OptionGroup
	}
	byID := make(map[uuid.UUID]optionRef)
	for i := range product.OptionGroups {
		group := &product.OptionGroups[i]
		for _, opt := range group.Options {
			byID[opt.ID] = optionRef{option: opt, group: group}
		}
	}

	selectedPerGroup := make(map[uuid.UUID]int)
	resolved := make([]models.Option, 0, len(optionIDs))
	for _, optionID := range optionIDs {
		ref, ok := byID[optionID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option does not belong to product").
				WithDetails(map[string]any{"option_id": optionID.String()})
		}
		selectedPerGroup[ref.group.ID]++
		resolved = append(resolved, ref.option)
	}

	for i := range product.OptionGroups {
		group := &product.OptionGroups[i]
		selected := selectedPerGroup[group.ID]
		if group.SelectionType == enums.SelectionTypeSingle && selected > 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option group allows a single selection").
				WithDetails(map[string]any{"group_id": group.ID.String()})
		}
		if selected < group.MinSelect {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option group requires more selections").
				WithDetails(map[string]any{"group_id": group.ID.String(), "min_select": group.MinSelect})
		}
		if group.MaxSelect > 0 && selected > group.MaxSelect {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option group allows fewer selections").
				WithDetails(map[string]any{"group_id": group.ID.String(), "max_select": group.MaxSelect})
		}
	}
	return resolved, nil
}

// applyStockDeltas moves stock for every tracked line: negative deltas on
// sale, positive on refund.
func (s *service) applyStockDeltas(ctx context.Context, tx *gorm.DB, act actor.Actor, order *models.Order, reason enums.StockReason) error {
	catalogRepo := s.catalog.WithTx(tx)
	refType := stockRefTypeOrder
	orderID := order.ID

	for i := range order.Items {
		item := &order.Items[i]
		tracked, err := s.trackedVariant(ctx, catalogRepo, act, item)
		if err != nil {
			return err
		}
		if !tracked {
			continue
		}

		delta := item.Qty
		if reason == enums.StockReasonSale {
			delta = delta.Neg()
		}
		_, err = s.stock.ApplyDelta(ctx, tx, act, inventory.AdjustInput{
			VariantID: item.VariantID,
			Delta:     delta,
			Reason:    reason,
			RefType:   &refType,
			RefID:     &orderID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) trackedVariant(ctx context.Context, catalogRepo catalog.Repository, act actor.Actor, item *models.OrderItem) (bool, error) {
	variant, err := catalogRepo.GetVariant(ctx, item.VariantID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}
	if variant == nil || !variant.TrackStock {
		return false, nil
	}
	product, err := catalogRepo.GetProduct(ctx, act.TenantID, variant.ProductID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product != nil && product.TrackStock, nil
}

// recalculate recomputes and persists the derived totals, returning the
// full breakdown.
func (s *service) recalculate(ctx context.Context, tx *gorm.DB, act actor.Actor, order *models.Order) (pricing.Breakdown, error) {
	catalogRepo := s.catalog.WithTx(tx)
	breakdown, err := s.computeBreakdown(ctx, catalogRepo, act, order)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	order.Subtotal = breakdown.Subtotal
	order.Discount = breakdown.Discount
	order.ManualDiscount = breakdown.ManualDiscount
	order.Tax = breakdown.ExclusiveTax
	order.Total = breakdown.Total

	if err := s.repo.WithTx(tx).UpdateOrder(ctx, order); err != nil {
		return pricing.Breakdown{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting totals")
	}
	return breakdown, nil
}

// previewBreakdown recomputes the breakdown without persisting anything,
// used for reads and idempotent capture replays.
func (s *service) previewBreakdown(ctx context.Context, catalogRepo catalog.Repository, act actor.Actor, order *models.Order) (pricing.Breakdown, error) {
	return s.computeBreakdown(ctx, catalogRepo, act, order)
}

func (s *service) computeBreakdown(ctx context.Context, catalogRepo catalog.Repository, act actor.Actor, order *models.Order) (pricing.Breakdown, error) {
	lines, err := s.pricingLines(ctx, catalogRepo, act, order.Items)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	// Promotions are loaded fresh on every recalculation, in creation order.
	promotions, err := catalogRepo.ListActivePromotions(ctx, act.TenantID)
	if err != nil {
		return pricing.Breakdown{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading promotions")
	}
	return pricing.Calculate(lines, promotions, order.ManualDiscount, time.Now()), nil
}

func (s *service) pricingLines(ctx context.Context, catalogRepo catalog.Repository, act actor.Actor, items []models.OrderItem) ([]pricing.Line, error) {
	lines := make([]pricing.Line, 0, len(items))
	for i := range items {
		item := &items[i]
		product, err := catalogRepo.GetProduct(ctx, act.TenantID, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConsistency, "order line references a missing product").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}

		unit := item.UnitPrice
		for _, opt := range item.Options {
			unit = unit.Add(opt.PriceDelta)
		}

		categoryIDs := make([]uuid.UUID, 0, len(product.Categories))
		for _, category := range product.Categories {
			categoryIDs = append(categoryIDs, category.ID)
		}

		lines = append(lines, pricing.Line{
			ProductID:   product.ID,
			CategoryIDs: categoryIDs,
			Qty:         item.Qty,
			UnitPrice:   unit,
			Taxes:       product.Taxes,
		})
	}
	return lines, nil
}
