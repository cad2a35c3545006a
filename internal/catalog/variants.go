package catalog

import (
	"github.com/google/uuid"

	"github.com/tillworks/tillworks-backend/pkg/db/models"
)

// DefaultVariant returns the default variant of a loaded product, falling
// back to the oldest one.
func DefaultVariant(product *models.Product) *models.Variant {
	for i := range product.Variants {
		if product.Variants[i].IsDefault {
			return &product.Variants[i]
		}
	}
	if len(product.Variants) > 0 {
		return &product.Variants[0]
	}
	return nil
}

// FindVariant returns the product's variant with the given id, or nil.
func FindVariant(product *models.Product, variantID uuid.UUID) *models.Variant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}
