package enums

import "fmt"

// PromotionType distinguishes percentage discounts from fixed amounts.
type PromotionType string

const (
	PromotionTypePercent PromotionType = "percent"
	PromotionTypeAmount  PromotionType = "amount"
)

// IsValid reports whether the value is a known PromotionType.
func (t PromotionType) IsValid() bool {
	return t == PromotionTypePercent || t == PromotionTypeAmount
}

// PromotionScope names the catalog subset a promotion applies to.
type PromotionScope string

const (
	PromotionScopeAll      PromotionScope = "all"
	PromotionScopeCategory PromotionScope = "category"
	PromotionScopeProduct  PromotionScope = "product"
)

var validPromotionScopes = []PromotionScope{
	PromotionScopeAll,
	PromotionScopeCategory,
	PromotionScopeProduct,
}

// IsValid reports whether the value is a known PromotionScope.
func (s PromotionScope) IsValid() bool {
	for _, candidate := range validPromotionScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePromotionScope converts raw input into a PromotionScope.
func ParsePromotionScope(value string) (PromotionScope, error) {
	for _, candidate := range validPromotionScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion scope %q", value)
}
