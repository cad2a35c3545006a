package enums

import "fmt"

// CashMovementType records whether cash entered or left the drawer.
type CashMovementType string

const (
	CashMovementTypeIn  CashMovementType = "cash_in"
	CashMovementTypeOut CashMovementType = "cash_out"
)

// IsValid reports whether the value is a known CashMovementType.
func (t CashMovementType) IsValid() bool {
	return t == CashMovementTypeIn || t == CashMovementTypeOut
}

// ParseCashMovementType converts raw input into a CashMovementType.
func ParseCashMovementType(value string) (CashMovementType, error) {
	switch CashMovementType(value) {
	case CashMovementTypeIn:
		return CashMovementTypeIn, nil
	case CashMovementTypeOut:
		return CashMovementTypeOut, nil
	default:
		return "", fmt.Errorf("invalid cash movement type %q", value)
	}
}
