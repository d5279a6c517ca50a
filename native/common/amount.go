package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// ErrArithmeticOverflow is returned when a checked 256-bit operation overflows.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// Zero returns a fresh zero amount.
func Zero() *uint256.Int { return new(uint256.Int) }

// Clone copies v, treating nil as zero.
func Clone(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

// IsZero reports whether v is nil or zero.
func IsZero(v *uint256.Int) bool { return v == nil || v.IsZero() }

// Add returns a+b, failing on overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).AddOverflow(Clone(a), Clone(b))
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// Sub returns a-b, failing when b > a.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	out, underflow := new(uint256.Int).SubOverflow(Clone(a), Clone(b))
	if underflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// Mul returns a*b, failing on overflow.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).MulOverflow(Clone(a), Clone(b))
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// MulDiv returns floor(a*b/d) using a 512-bit intermediate product.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if IsZero(d) {
		return nil, errors.New("division by zero")
	}
	out, overflow := new(uint256.Int).MulDivOverflow(Clone(a), Clone(b), d)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if Clone(a).Cmp(Clone(b)) <= 0 {
		return Clone(a)
	}
	return Clone(b)
}

// FromBig converts a non-negative big integer into a 256-bit amount.
func FromBig(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %s", v.String())
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// ParseAmount parses a base-10 amount string. Empty strings parse as zero.
func ParseAmount(raw string) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return new(uint256.Int), nil
	}
	out, err := uint256.FromDecimal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return out, nil
}
