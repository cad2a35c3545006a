package enums

// TaxMode distinguishes taxes already embedded in the price from taxes added on top.
type TaxMode string

const (
	TaxModeInclusive TaxMode = "inclusive"
	TaxModeExclusive TaxMode = "exclusive"
)

// IsValid reports whether the value is a known TaxMode.
func (m TaxMode) IsValid() bool {
	return m == TaxModeInclusive || m == TaxModeExclusive
}
