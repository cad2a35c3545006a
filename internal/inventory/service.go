package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/internal/catalog"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	"github.com/tillworks/tillworks-backend/pkg/config"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
	"github.com/tillworks/tillworks-backend/pkg/metrics"
)

// deltaEpsilon is the threshold below which an adjustment is a no-op:
// writes smaller than this would only pollute the ledger history.
var deltaEpsilon = decimal.NewFromFloat(0.0001)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the stock ledger: every balance change appends one immutable
// entry and updates the cached projection in the same transaction.
type Service interface {
	GetOnHand(ctx context.Context, act actor.Actor, variantID uuid.UUID) (decimal.Decimal, error)
	Adjust(ctx context.Context, act actor.Actor, input AdjustInput) (decimal.Decimal, error)
	ApplyDelta(ctx context.Context, tx *gorm.DB, act actor.Actor, input AdjustInput) (decimal.Decimal, error)
}

// AdjustInput captures one requested balance change.
type AdjustInput struct {
	VariantID     uuid.UUID
	Delta         decimal.Decimal
	Reason        enums.StockReason
	RefType       *string
	RefID         *uuid.UUID
	Note          *string
	ProductHintID *uuid.UUID
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	tx      txRunner
	cfg     config.InventoryConfig
	logg    *logger.Logger
	metrics *metrics.POSMetrics
}

// NewService wires the stock ledger with its repositories and stock policy.
func NewService(repo Repository, catalogRepo catalog.Repository, tx txRunner, cfg config.InventoryConfig, logg *logger.Logger, posMetrics *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		catalog: catalogRepo,
		tx:      tx,
		cfg:     cfg,
		logg:    logg,
		metrics: posMetrics,
	}, nil
}

// GetOnHand returns the cached balance for the acting store, zero when no
// row exists yet.
func (s *service) GetOnHand(ctx context.Context, act actor.Actor, variantID uuid.UUID) (decimal.Decimal, error) {
	if err := act.Validate(); err != nil {
		return decimal.Zero, err
	}
	if variantID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	level, err := s.repo.GetStockLevel(ctx, act.TenantID, act.StoreID, variantID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stock level")
	}
	if level == nil {
		return decimal.Zero, nil
	}
	return level.QtyOnHand, nil
}

// Adjust applies one balance change in its own transaction.
func (s *service) Adjust(ctx context.Context, act actor.Actor, input AdjustInput) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		newBalance, err := s.ApplyDelta(ctx, tx, act, input)
		if err != nil {
			return err
		}
		balance = newBalance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// ApplyDelta runs the adjustment inside the caller's transaction. The order
// engine uses this to decrement stock atomically with capture.
func (s *service) ApplyDelta(ctx context.Context, tx *gorm.DB, act actor.Actor, input AdjustInput) (decimal.Decimal, error) {
	if err := act.Validate(); err != nil {
		return decimal.Zero, err
	}
	if input.VariantID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if !input.Reason.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock reason")
	}

	catalogRepo := s.catalog.WithTx(tx)
	repo := s.repo.WithTx(tx)

	variant, product, err := s.resolveVariant(ctx, catalogRepo, act, input)
	if err != nil {
		return decimal.Zero, err
	}

	if !(variant.TrackStock && product.TrackStock) {
		scoped := s.logg.WithFields(ctx, map[string]any{
			"variant_id": variant.ID.String(),
			"store_id":   act.StoreID.String(),
			"reason":     string(input.Reason),
		})
		if !s.cfg.AllowAdjustWhenTrackingDisabled {
			s.logg.Info(scoped, "stock adjustment skipped: tracking disabled")
			return s.currentBalance(ctx, repo, act, variant.ID)
		}
		s.logg.Warn(scoped, "adjusting stock on a tracking-disabled variant")
	}

	if input.Delta.Abs().LessThan(deltaEpsilon) {
		return s.currentBalance(ctx, repo, act, variant.ID)
	}

	level, err := repo.LockStockLevel(ctx, act.TenantID, act.StoreID, variant.ID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking stock level")
	}
	if level == nil {
		level = &models.StockLevel{
			ID:        uuid.New(),
			TenantID:  act.TenantID,
			StoreID:   act.StoreID,
			VariantID: variant.ID,
			QtyOnHand: decimal.Zero,
		}
		if err := repo.CreateStockLevel(ctx, level); err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock level")
		}
	}

	delta := input.Delta.Round(3)
	newQty := level.QtyOnHand.Add(delta).Round(3)
	if newQty.IsNegative() && !s.cfg.AllowNegativeStock {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
			WithDetails(map[string]any{
				"variant_id": variant.ID.String(),
				"on_hand":    level.QtyOnHand.String(),
				"requested":  delta.String(),
			})
	}

	if err := repo.UpdateStockLevelQty(ctx, level.ID, newQty); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating stock level")
	}

	userID := act.UserID
	entry := &models.StockEntry{
		ID:        uuid.New(),
		TenantID:  act.TenantID,
		StoreID:   act.StoreID,
		VariantID: variant.ID,
		QtyDelta:  delta,
		Reason:    input.Reason,
		RefType:   input.RefType,
		RefID:     input.RefID,
		UserID:    &userID,
		Note:      input.Note,
	}
	if err := repo.CreateStockEntry(ctx, entry); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending stock entry")
	}

	s.metrics.IncStockAdjustment(string(input.Reason))
	return newQty, nil
}

// resolveVariant loads the variant plus its product, substituting the
// product's default variant when a product hint disagrees with the given
// variant id.
func (s *service) resolveVariant(ctx context.Context, catalogRepo catalog.Repository, act actor.Actor, input AdjustInput) (*models.Variant, *models.Product, error) {
	if input.ProductHintID != nil {
		product, err := catalogRepo.GetProduct(ctx, act.TenantID, *input.ProductHintID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product hint")
		}
		if product == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if match := catalog.FindVariant(product, input.VariantID); match != nil {
			return match, product, nil
		}
		fallback := catalog.DefaultVariant(product)
		if fallback == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConsistency, "product has no variants")
		}
		return fallback, product, nil
	}

	variant, err := catalogRepo.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}
	if variant == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	product, err := catalogRepo.GetProduct(ctx, act.TenantID, variant.ProductID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		// Variant exists but its product is outside the tenant scope.
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return variant, product, nil
}

func (s *service) currentBalance(ctx context.Context, repo Repository, act actor.Actor, variantID uuid.UUID) (decimal.Decimal, error) {
	level, err := repo.GetStockLevel(ctx, act.TenantID, act.StoreID, variantID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stock level")
	}
	if level == nil {
		return decimal.Zero, nil
	}
	return level.QtyOnHand, nil
}
