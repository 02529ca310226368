package shared

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places stored for quantities and
// balances. Columns are DECIMAL(18,4), so anything finer would be rounded by
// the database while the in-memory registry kept the exact value.
const QuantityScale = 4

// HasQuantityScale reports whether q fits in QuantityScale decimal places
func HasQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// CheckQuantityScale returns an INVALID_INPUT error naming field when q has
// more than QuantityScale decimal places
func CheckQuantityScale(field string, q decimal.Decimal) error {
	if HasQuantityScale(q) {
		return nil
	}
	return NewDomainError(CodeInvalidInput,
		field+" cannot have more than "+strconv.Itoa(QuantityScale)+" decimal places")
}
