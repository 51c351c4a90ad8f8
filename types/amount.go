// Package types provides the value types shared across the token engine.
package types

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Arithmetic errors. Amounts never wrap.
var (
	ErrOverflow       = errors.New("types: amount overflow")
	ErrUnderflow      = errors.New("types: amount underflow")
	ErrDivisionByZero = errors.New("types: division by zero")
	ErrInvalidAmount  = errors.New("types: invalid amount")
)

// Amount is a non-negative integer quantity in the token's smallest unit.
// It is a 256-bit unsigned value; all arithmetic is checked and never
// uses floating point.
//
//nolint:recvcheck // Value receivers for arithmetic, pointer receivers for UnmarshalText/Scan.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an Amount holding n smallest units.
func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

// ParseAmount parses a base-10 integer string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if s == "" {
		return a, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return a, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Units returns whole * 10^decimals, i.e. whole tokens expressed in
// smallest units.
func Units(whole uint64, decimals uint8) (Amount, error) {
	scale, err := Pow10(decimals)
	if err != nil {
		return Amount{}, err
	}
	return NewAmount(whole).Mul(scale)
}

// MustUnits is like Units but panics on overflow.
func MustUnits(whole uint64, decimals uint8) Amount {
	a, err := Units(whole, decimals)
	if err != nil {
		panic(err)
	}
	return a
}

// Pow10 returns 10^exp.
func Pow10(exp uint8) (Amount, error) {
	result := NewAmount(1)
	ten := NewAmount(10)
	for i := uint8(0); i < exp; i++ {
		next, err := result.Mul(ten)
		if err != nil {
			return Amount{}, err
		}
		result = next
	}
	return result, nil
}

// ParseUnits parses a human-readable decimal such as "12.5" into smallest
// units for a token with the given number of decimals. Fractions finer than
// the token's precision are rejected rather than truncated.
func ParseUnits(s string, decimals uint8) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %q exceeds %d decimals", ErrInvalidAmount, s, decimals)
	}
	var a Amount
	if a.v.SetFromBig(scaled.BigInt()) {
		return Amount{}, ErrOverflow
	}
	return a, nil
}

// ──────────────────────────────────────────────────
// Arithmetic
// ──────────────────────────────────────────────────

// Add returns a + b, or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var out Amount
	if _, overflow := out.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return out, nil
}

// Sub returns a - b, or ErrUnderflow if b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var out Amount
	if _, underflow := out.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrUnderflow
	}
	return out, nil
}

// Mul returns a * b, or ErrOverflow.
func (a Amount) Mul(b Amount) (Amount, error) {
	var out Amount
	if _, overflow := out.v.MulOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return out, nil
}

// MulDiv returns floor(a * num / den). The intermediate product is checked
// for overflow.
func (a Amount) MulDiv(num, den uint64) (Amount, error) {
	if den == 0 {
		return Amount{}, ErrDivisionByZero
	}
	product, err := a.Mul(NewAmount(num))
	if err != nil {
		return Amount{}, err
	}
	var out Amount
	out.v.Div(&product.v, uint256.NewInt(den))
	return out, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Lt reports whether a < b.
func (a Amount) Lt(b Amount) bool { return a.v.Lt(&b.v) }

// Equal reports whether a == b.
func (a Amount) Equal(b Amount) bool { return a.v.Eq(&b.v) }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Uint64 returns the amount as a uint64 and whether it fit.
func (a Amount) Uint64() (uint64, bool) {
	if !a.v.IsUint64() {
		return 0, false
	}
	return a.v.Uint64(), true
}

// Float64 returns an approximation for metrics. Never use it for accounting.
func (a Amount) Float64() float64 {
	f, _ := decimal.NewFromBigInt(a.v.ToBig(), 0).Float64()
	return f
}

// ──────────────────────────────────────────────────
// Formatting
// ──────────────────────────────────────────────────

// String returns the base-10 representation in smallest units.
func (a Amount) String() string { return a.v.Dec() }

// Format renders the amount in whole tokens, e.g. "16000000" or "0.01".
func (a Amount) Format(decimals uint8) string {
	return decimal.NewFromBigInt(a.v.ToBig(), -int32(decimals)).String()
}

// MarshalText implements encoding.TextMarshaler. JSON output is a string so
// values above 2^53 survive round trips.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.v.Dec(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("%w: negative value %d", ErrInvalidAmount, v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Amount", src)
	}
}

// Sum adds amounts with overflow checking.
func Sum(amounts ...Amount) (Amount, error) {
	total := Amount{}
	for _, a := range amounts {
		next, err := total.Add(a)
		if err != nil {
			return Amount{}, err
		}
		total = next
	}
	return total, nil
}
