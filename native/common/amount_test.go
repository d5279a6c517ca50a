package common

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestCheckedArithmetic(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	if _, err := Add(max, uint256.NewInt(1)); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected add overflow, got %v", err)
	}
	if _, err := Sub(uint256.NewInt(1), uint256.NewInt(2)); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected sub underflow, got %v", err)
	}
	if _, err := Mul(max, uint256.NewInt(2)); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected mul overflow, got %v", err)
	}
	// max*max/max fits thanks to the wide intermediate.
	got, err := MulDiv(max, max, max)
	if err != nil {
		t.Fatalf("muldiv: %v", err)
	}
	if !got.Eq(max) {
		t.Fatalf("muldiv = %s", got)
	}
	if _, err := MulDiv(uint256.NewInt(1), uint256.NewInt(1), nil); err == nil {
		t.Fatalf("expected division by zero")
	}
}

func TestParseAndConvert(t *testing.T) {
	v, err := ParseAmount(" 1000000000000000000 ")
	if err != nil || v.Uint64() != 1_000_000_000_000_000_000 {
		t.Fatalf("parse: %v %v", v, err)
	}
	if v, err := ParseAmount(""); err != nil || !v.IsZero() {
		t.Fatalf("empty should parse as zero: %v %v", v, err)
	}
	if _, err := ParseAmount("-5"); err == nil {
		t.Fatalf("negative must fail")
	}
	if _, err := FromBig(big.NewInt(-1)); err == nil {
		t.Fatalf("negative big must fail")
	}
	if Min(uint256.NewInt(3), uint256.NewInt(7)).Uint64() != 3 {
		t.Fatalf("min")
	}
	if !IsZero(nil) || IsZero(uint256.NewInt(1)) {
		t.Fatalf("IsZero")
	}
}
