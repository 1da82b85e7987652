// Package safemath provides checked arithmetic over unsigned 128-bit amounts.
// Values are carried as *uint256.Int; any operand or result wider than 128 bits
// is reported as an overflow instead of being wrapped or truncated.
package safemath

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Bits is the width of every amount handled by this package.
const Bits = 128

var (
	// ErrOverflow is returned when a result does not fit in 128 bits or would be negative.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrDivideByZero is returned when a denominator is zero.
	ErrDivideByZero = errors.New("division by zero")
	// ErrNilOperand is returned when a nil pointer is passed as an operand.
	ErrNilOperand = errors.New("nil operand")

	maxAmount = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), Bits), uint256.NewInt(1))
)

// Max returns 2^128 - 1. The returned value is a fresh copy.
func Max() *uint256.Int {
	return new(uint256.Int).Set(maxAmount)
}

// Fits reports whether x is representable as an unsigned 128-bit integer.
func Fits(x *uint256.Int) bool {
	return x != nil && x.BitLen() <= Bits
}

func checkOperands(op string, x, y *uint256.Int) error {
	if x == nil || y == nil {
		return fmt.Errorf("%w: %s", ErrNilOperand, op)
	}
	if !Fits(x) || !Fits(y) {
		return fmt.Errorf("%w: %s operand exceeds %d bits", ErrOverflow, op, Bits)
	}
	return nil
}

// Add returns x + y.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	if err := checkOperands("add", x, y); err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow || !Fits(z) {
		return nil, fmt.Errorf("%w: %s + %s", ErrOverflow, x.Dec(), y.Dec())
	}
	return z, nil
}

// Sub returns x - y. A negative result is reported as ErrOverflow.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	if err := checkOperands("sub", x, y); err != nil {
		return nil, err
	}
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, fmt.Errorf("%w: %s - %s", ErrOverflow, x.Dec(), y.Dec())
	}
	return z, nil
}

// Mul returns x * y.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	if err := checkOperands("mul", x, y); err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow || !Fits(z) {
		return nil, fmt.Errorf("%w: %s * %s", ErrOverflow, x.Dec(), y.Dec())
	}
	return z, nil
}

// MulWide returns the exact 256-bit product of two 128-bit operands. The result
// is only meant for comparisons and never fits back into an amount slot.
func MulWide(x, y *uint256.Int) (*uint256.Int, error) {
	if err := checkOperands("mul", x, y); err != nil {
		return nil, err
	}
	// 128 x 128 bits always fits in 256 bits.
	return new(uint256.Int).Mul(x, y), nil
}

// Div returns floor(x / y).
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if err := checkOperands("div", x, y); err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, fmt.Errorf("%w: %s / 0", ErrDivideByZero, x.Dec())
	}
	return new(uint256.Int).Div(x, y), nil
}

// DivCeil returns ceil(x / y).
func DivCeil(x, y *uint256.Int) (*uint256.Int, error) {
	if err := checkOperands("div", x, y); err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, fmt.Errorf("%w: %s / 0", ErrDivideByZero, x.Dec())
	}
	q, r := new(uint256.Int).DivMod(x, y, new(uint256.Int))
	if r.IsZero() {
		return q, nil
	}
	return Add(q, uint256.NewInt(1))
}

// FromBig converts a non-negative big.Int into an amount.
func FromBig(b *big.Int) (*uint256.Int, error) {
	if b == nil {
		return nil, ErrNilOperand
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrOverflow, b.String())
	}
	z, overflow := uint256.FromBig(b)
	if overflow || !Fits(z) {
		return nil, fmt.Errorf("%w: %s exceeds %d bits", ErrOverflow, b.String(), Bits)
	}
	return z, nil
}

// FromDecimal parses a base-10 string into an amount.
func FromDecimal(s string) (*uint256.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", s)
	}
	return FromBig(b)
}
