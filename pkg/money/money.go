package money

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the fixed number of fractional digits carried by every Amount.
// It matches the numeric(15,2) columns in the schema; rounding happens once,
// at parse time, never during reconciliation arithmetic.
const Scale = 2

// ErrNegativeResult signals a subtraction that would produce a negative
// balance. The ledger treats this as a programming error, not user input.
var ErrNegativeResult = fmt.Errorf("money: operation would produce a negative amount")

// Amount is a non-negative fixed-point monetary value.
//
// The zero value is usable and equal to Zero().
type Amount struct {
	dec decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{dec: decimal.Zero}
}

// FromString parses a decimal string such as "1000.00" into an Amount.
// Negative values and values carrying more than Scale fractional digits are
// rejected.
func FromString(value string) (Amount, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("money: empty amount")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("money: parsing %q: %w", value, err)
	}
	return fromDecimal(dec)
}

// FromDecimal converts a raw decimal into an Amount, enforcing sign and scale.
func FromDecimal(dec decimal.Decimal) (Amount, error) {
	return fromDecimal(dec)
}

func fromDecimal(dec decimal.Decimal) (Amount, error) {
	if dec.IsNegative() {
		return Amount{}, fmt.Errorf("money: negative amount %s", dec)
	}
	if dec.Exponent() < -Scale {
		return Amount{}, fmt.Errorf("money: amount %s exceeds scale of %d fractional digits", dec, Scale)
	}
	return Amount{dec: dec.Round(Scale)}, nil
}

// Add returns a + b. Addition of non-negative amounts cannot fail.
func (a Amount) Add(b Amount) Amount {
	return Amount{dec: a.dec.Add(b.dec)}
}

// Sub returns a - b, failing with ErrNegativeResult when b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	result := a.dec.Sub(b.dec)
	if result.IsNegative() {
		return Amount{}, ErrNegativeResult
	}
	return Amount{dec: result}, nil
}

// Cmp compares two amounts: -1 when a < b, 0 when equal, 1 when a > b.
func (a Amount) Cmp(b Amount) int {
	return a.dec.Cmp(b.dec)
}

// Equal reports whether both amounts carry the same value.
func (a Amount) Equal(b Amount) bool {
	return a.dec.Equal(b.dec)
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.dec.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.dec.IsPositive()
}

// Decimal exposes the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.dec
}

// String renders the amount with the fixed scale, e.g. "600.00".
func (a Amount) String() string {
	return a.dec.StringFixed(Scale)
}

// MarshalJSON renders the amount as a JSON string to avoid any float step.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal literals.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := FromString(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer so models can persist Amount columns.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for numeric(15,2) columns.
func (a *Amount) Scan(src any) error {
	var dec decimal.Decimal
	if err := dec.Scan(src); err != nil {
		return fmt.Errorf("money: scanning column: %w", err)
	}
	parsed, err := fromDecimal(dec)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// GormDataType tells GORM which column type to use for Amount fields.
func (Amount) GormDataType() string {
	return "numeric(15,2)"
}
