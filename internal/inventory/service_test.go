package inventory

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/internal/catalog"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	"github.com/tillworks/tillworks-backend/pkg/config"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps every pooled connection on the same database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  track_stock INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  cost TEXT NOT NULL DEFAULT '0',
  track_stock INTEGER NOT NULL DEFAULT 1,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE option_groups (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  selection_type TEXT NOT NULL DEFAULT 'single',
  min_select INTEGER NOT NULL DEFAULT 0,
  max_select INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE options (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_delta TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE taxes (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  rate TEXT NOT NULL,
  mode TEXT NOT NULL DEFAULT 'exclusive',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE product_categories (
  product_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  PRIMARY KEY (product_id, category_id)
);`,
		`CREATE TABLE product_taxes (
  product_id TEXT NOT NULL,
  tax_id TEXT NOT NULL,
  PRIMARY KEY (product_id, tax_id)
);`,
		`CREATE TABLE stock_levels (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  qty_on_hand TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (tenant_id, store_id, variant_id)
);`,
		`CREATE TABLE stock_entries (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  qty_delta TEXT NOT NULL,
  reason TEXT NOT NULL,
  ref_type TEXT,
  ref_id TEXT,
  user_id TEXT,
  note TEXT,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
}

type inventoryFixture struct {
	db      *gorm.DB
	svc     Service
	repo    Repository
	act     actor.Actor
	product models.Product
	variant models.Variant
}

func newInventoryFixture(t *testing.T, cfg config.InventoryConfig) *inventoryFixture {
	t.Helper()

	db := setupInventoryTestDB(t)
	act := actor.Actor{
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		UserID:   uuid.New(),
		Role:     enums.MemberRoleCashier,
	}

	product := models.Product{
		ID:         uuid.New(),
		TenantID:   act.TenantID,
		Name:       "Espresso",
		IsActive:   true,
		TrackStock: true,
	}
	require.NoError(t, db.Create(&product).Error)

	variant := models.Variant{
		ID:         uuid.New(),
		ProductID:  product.ID,
		Name:       "Double",
		Price:      decimal.NewFromInt(3),
		TrackStock: true,
		IsDefault:  true,
	}
	require.NoError(t, db.Create(&variant).Error)

	repo := NewRepository(db)
	svc, err := NewService(repo, catalog.NewRepository(db), gormTxRunner{db: db}, cfg, testLogger(), nil)
	require.NoError(t, err)

	return &inventoryFixture{
		db:      db,
		svc:     svc,
		repo:    repo,
		act:     act,
		product: product,
		variant: variant,
	}
}

func (f *inventoryFixture) adjust(t *testing.T, delta string, reason enums.StockReason) decimal.Decimal {
	t.Helper()
	balance, err := f.svc.Adjust(context.Background(), f.act, AdjustInput{
		VariantID: f.variant.ID,
		Delta:     decimal.RequireFromString(delta),
		Reason:    reason,
	})
	require.NoError(t, err)
	return balance
}

func TestAdjustLedgerRoundTrip(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	f.adjust(t, "10", enums.StockReasonReceived)
	f.adjust(t, "-5", enums.StockReasonSale)
	balance := f.adjust(t, "5", enums.StockReasonRefund)
	require.True(t, balance.Equal(decimal.NewFromInt(10)), "balance %s", balance)

	entries, err := f.repo.ListEntries(context.Background(), f.act.TenantID, f.act.StoreID, f.variant.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	sum, err := f.repo.SumEntries(context.Background(), f.act.TenantID, f.act.StoreID, f.variant.ID)
	require.NoError(t, err)
	require.True(t, sum.Equal(balance), "ledger sum %s != balance %s", sum, balance)

	onHand, err := f.svc.GetOnHand(context.Background(), f.act, f.variant.ID)
	require.NoError(t, err)
	require.True(t, onHand.Equal(balance))
}

func TestAdjustRejectsNegativeBalance(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	f.adjust(t, "3", enums.StockReasonReceived)

	_, err := f.svc.Adjust(context.Background(), f.act, AdjustInput{
		VariantID: f.variant.ID,
		Delta:     decimal.NewFromInt(-4),
		Reason:    enums.StockReasonSale,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	// The rejected transaction must leave neither a balance change nor an entry.
	entries, err := f.repo.ListEntries(context.Background(), f.act.TenantID, f.act.StoreID, f.variant.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	onHand, err := f.svc.GetOnHand(context.Background(), f.act, f.variant.ID)
	require.NoError(t, err)
	require.True(t, onHand.Equal(decimal.NewFromInt(3)))
}

func TestAdjustAllowsNegativeWhenConfigured(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{AllowNegativeStock: true})

	balance := f.adjust(t, "-2", enums.StockReasonSale)
	require.True(t, balance.Equal(decimal.NewFromInt(-2)), "balance %s", balance)
}

func TestAdjustTinyDeltaIsNoOp(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	f.adjust(t, "5", enums.StockReasonReceived)
	balance := f.adjust(t, "0.00005", enums.StockReasonManual)
	require.True(t, balance.Equal(decimal.NewFromInt(5)))

	entries, err := f.repo.ListEntries(context.Background(), f.act.TenantID, f.act.StoreID, f.variant.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no-op adjustments must not append ledger entries")
}

func TestAdjustSkipsWhenTrackingDisabled(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	require.NoError(t, f.db.Model(&models.Variant{}).
		Where("id = ?", f.variant.ID).
		Update("track_stock", false).Error)

	balance, err := f.svc.Adjust(context.Background(), f.act, AdjustInput{
		VariantID: f.variant.ID,
		Delta:     decimal.NewFromInt(5),
		Reason:    enums.StockReasonReceived,
	})
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	entries, err := f.repo.ListEntries(context.Background(), f.act.TenantID, f.act.StoreID, f.variant.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAdjustTrackingDisabledOverride(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{AllowAdjustWhenTrackingDisabled: true})

	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", f.product.ID).
		Update("track_stock", false).Error)

	balance := f.adjust(t, "4", enums.StockReasonReceived)
	require.True(t, balance.Equal(decimal.NewFromInt(4)))
}

func TestAdjustRoundsToThreeDecimals(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	balance := f.adjust(t, "1.23456", enums.StockReasonReceived)
	require.True(t, balance.Equal(decimal.RequireFromString("1.235")), "balance %s", balance)
}

func TestAdjustProductHintSubstitutesDefaultVariant(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	// A variant id from some other product: the hint wins and the default
	// variant of the hinted product absorbs the adjustment.
	strayVariant := uuid.New()
	hint := f.product.ID
	balance, err := f.svc.Adjust(context.Background(), f.act, AdjustInput{
		VariantID:     strayVariant,
		Delta:         decimal.NewFromInt(7),
		Reason:        enums.StockReasonReceived,
		ProductHintID: &hint,
	})
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(7)))

	entries, err := f.repo.ListEntries(context.Background(), f.act.TenantID, f.act.StoreID, f.variant.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGetOnHandCrossTenantVariantIsNotFound(t *testing.T) {
	f := newInventoryFixture(t, config.InventoryConfig{})

	other := f.act
	other.TenantID = uuid.New()
	_, err := f.svc.Adjust(context.Background(), other, AdjustInput{
		VariantID: f.variant.ID,
		Delta:     decimal.NewFromInt(1),
		Reason:    enums.StockReasonReceived,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}
