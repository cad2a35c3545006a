package enums

// PaymentStatus tracks what happened to a captured payment.
type PaymentStatus string

const (
	PaymentStatusCaptured PaymentStatus = "captured"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid reports whether the value is a known PaymentStatus.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusCaptured || s == PaymentStatusRefunded
}
