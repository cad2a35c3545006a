package enums

// SelectionType constrains how many options may be picked from an option group.
type SelectionType string

const (
	SelectionTypeSingle   SelectionType = "single"
	SelectionTypeMultiple SelectionType = "multiple"
)

// IsValid reports whether the value is a known SelectionType.
func (s SelectionType) IsValid() bool {
	return s == SelectionTypeSingle || s == SelectionTypeMultiple
}
