package enums

import "fmt"

// StockReason labels why a stock adjustment happened. The ledger stores it verbatim.
type StockReason string

const (
	StockReasonSale     StockReason = "sale"
	StockReasonRefund   StockReason = "refund"
	StockReasonReceived StockReason = "received"
	StockReasonRecount  StockReason = "recount"
	StockReasonWaste    StockReason = "waste"
	StockReasonTransfer StockReason = "transfer"
	StockReasonManual   StockReason = "manual"
)

var validStockReasons = []StockReason{
	StockReasonSale,
	StockReasonRefund,
	StockReasonReceived,
	StockReasonRecount,
	StockReasonWaste,
	StockReasonTransfer,
	StockReasonManual,
}

// IsValid reports whether the value is a known StockReason.
func (r StockReason) IsValid() bool {
	for _, candidate := range validStockReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStockReason converts raw input into a StockReason.
func ParseStockReason(value string) (StockReason, error) {
	for _, candidate := range validStockReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock reason %q", value)
}
