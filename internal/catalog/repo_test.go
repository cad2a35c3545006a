package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE products (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1, track_stock INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE variants (
  id TEXT PRIMARY KEY, product_id TEXT NOT NULL, name TEXT NOT NULL,
  price TEXT NOT NULL, cost TEXT NOT NULL DEFAULT '0',
  track_stock INTEGER NOT NULL DEFAULT 1, is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE option_groups (
  id TEXT PRIMARY KEY, product_id TEXT NOT NULL, name TEXT NOT NULL,
  selection_type TEXT NOT NULL DEFAULT 'single',
  min_select INTEGER NOT NULL DEFAULT 0, max_select INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE options (
  id TEXT PRIMARY KEY, group_id TEXT NOT NULL, name TEXT NOT NULL,
  price_delta TEXT NOT NULL DEFAULT '0', created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE categories (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, name TEXT NOT NULL,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE taxes (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, name TEXT NOT NULL,
  rate TEXT NOT NULL, mode TEXT NOT NULL DEFAULT 'exclusive',
  is_active INTEGER NOT NULL DEFAULT 1, created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE product_categories (
  product_id TEXT NOT NULL, category_id TEXT NOT NULL,
  PRIMARY KEY (product_id, category_id)
);`,
		`CREATE TABLE product_taxes (
  product_id TEXT NOT NULL, tax_id TEXT NOT NULL,
  PRIMARY KEY (product_id, tax_id)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProductWithVariants(t *testing.T, db *gorm.DB, tenantID uuid.UUID, defaults ...bool) (models.Product, []models.Variant) {
	t.Helper()

	product := models.Product{ID: uuid.New(), TenantID: tenantID, Name: "Latte", IsActive: true, TrackStock: true}
	require.NoError(t, db.Create(&product).Error)

	base := time.Now().UTC().Add(-time.Hour)
	variants := make([]models.Variant, 0, len(defaults))
	for i, isDefault := range defaults {
		variant := models.Variant{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      fmt.Sprintf("Size %d", i),
			Price:     decimal.NewFromInt(int64(5 + i)),
			IsDefault: isDefault,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&variant).Error)
		variants = append(variants, variant)
	}
	return product, variants
}

func TestGetProductPromotesOldestVariant(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()

	product, variants := seedProductWithVariants(t, db, tenantID, false, false)

	loaded, err := repo.GetProduct(context.Background(), tenantID, product.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	dv := DefaultVariant(loaded)
	require.NotNil(t, dv)
	require.Equal(t, variants[0].ID, dv.ID, "oldest variant becomes the default")

	// The promotion is persisted, not just patched in memory.
	var row models.Variant
	require.NoError(t, db.First(&row, "id = ?", variants[0].ID).Error)
	require.True(t, row.IsDefault)

	reloaded, err := repo.GetProduct(context.Background(), tenantID, product.ID)
	require.NoError(t, err)
	require.Equal(t, variants[0].ID, DefaultVariant(reloaded).ID)
}

func TestGetProductKeepsExistingDefault(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()

	product, variants := seedProductWithVariants(t, db, tenantID, false, true)

	loaded, err := repo.GetProduct(context.Background(), tenantID, product.ID)
	require.NoError(t, err)

	dv := DefaultVariant(loaded)
	require.NotNil(t, dv)
	require.Equal(t, variants[1].ID, dv.ID)

	var row models.Variant
	require.NoError(t, db.First(&row, "id = ?", variants[0].ID).Error)
	require.False(t, row.IsDefault, "oldest variant must not be promoted over an existing default")
}

func TestGetProductCrossTenantIsNil(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()

	product, _ := seedProductWithVariants(t, db, tenantID, true)

	loaded, err := repo.GetProduct(context.Background(), uuid.New(), product.ID)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestFindVariant(t *testing.T) {
	a := models.Variant{ID: uuid.New()}
	b := models.Variant{ID: uuid.New()}
	product := &models.Product{Variants: []models.Variant{a, b}}

	require.Equal(t, b.ID, FindVariant(product, b.ID).ID)
	require.Nil(t, FindVariant(product, uuid.New()))
}
