package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/pkg/db/models"
)

// Repository provides the read surface the register depends on: products with
// their variants and option groups, active promotions, and the identity rows
// referenced by orders and shifts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error)
	MarkDefaultVariant(ctx context.Context, variantID uuid.UUID) error
	ListActivePromotions(ctx context.Context, tenantID uuid.UUID) ([]models.Promotion, error)
	GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	AddLoyaltyPoints(ctx context.Context, customerID uuid.UUID, points int64) error
	GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error)
	GetRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*models.Register, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("OptionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("OptionGroups.Options").
		Preload("Categories").
		Preload("Taxes").
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.ensureDefaultVariant(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ensureDefaultVariant promotes the oldest variant on legacy products that
// have none marked, so every loaded product carries exactly one default.
// Runs on the repository's current connection: when the load happens inside
// a transaction the promotion commits with it.
func (r *repository) ensureDefaultVariant(ctx context.Context, product *models.Product) error {
	if len(product.Variants) == 0 {
		return nil
	}
	for i := range product.Variants {
		if product.Variants[i].IsDefault {
			return nil
		}
	}
	if err := r.MarkDefaultVariant(ctx, product.Variants[0].ID); err != nil {
		return err
	}
	product.Variants[0].IsDefault = true
	return nil
}

func (r *repository) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *repository) MarkDefaultVariant(ctx context.Context, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ?", variantID).
		Update("is_default", true).Error
}

func (r *repository) ListActivePromotions(ctx context.Context, tenantID uuid.UUID) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("created_at ASC, id ASC").
		Find(&promotions).Error
	if err != nil {
		return nil, err
	}
	return promotions, nil
}

func (r *repository) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) AddLoyaltyPoints(ctx context.Context, customerID uuid.UUID, points int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error
}

func (r *repository) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*models.Register, error) {
	var register models.Register
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, registerID).
		First(&register).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &register, nil
}
