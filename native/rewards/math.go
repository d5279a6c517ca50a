package rewards

import (
	"math/big"

	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

// accumulatedFor returns floor((shares*acc + correction) / Scale), clamped at
// zero: the rewards ever attributed to a position.
func accumulatedFor(shares, acc *uint256.Int, correction *big.Int) *big.Int {
	total := new(big.Int).Mul(nativecommon.Clone(shares).ToBig(), nativecommon.Clone(acc).ToBig())
	if correction != nil {
		total.Add(total, correction)
	}
	if total.Sign() <= 0 {
		return new(big.Int)
	}
	return total.Quo(total, Scale.ToBig())
}

// withdrawableFor is accumulatedFor minus what the account already withdrew.
func withdrawableFor(account *Account, acc *uint256.Int) *uint256.Int {
	if account == nil {
		return new(uint256.Int)
	}
	owed := accumulatedFor(account.Shares, acc, account.Correction)
	owed.Sub(owed, nativecommon.Clone(account.Withdrawn).ToBig())
	if owed.Sign() <= 0 {
		return new(uint256.Int)
	}
	out, overflow := uint256.FromBig(owed)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return out
}

// adjustCorrection applies correction -= delta*acc.
func adjustCorrection(correction *big.Int, delta *big.Int, acc *uint256.Int) *big.Int {
	out := new(big.Int)
	if correction != nil {
		out.Set(correction)
	}
	adj := new(big.Int).Mul(delta, nativecommon.Clone(acc).ToBig())
	return out.Sub(out, adj)
}

// distribute raises acc by (amount*Scale + dust) / totalShares and returns
// the new accumulator and carried dust.
func distribute(acc, dust, amount, totalShares *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	scaled, err := nativecommon.Mul(amount, Scale)
	if err != nil {
		return nil, nil, err
	}
	numerator, err := nativecommon.Add(scaled, dust)
	if err != nil {
		return nil, nil, err
	}
	increment := new(uint256.Int)
	remainder := new(uint256.Int)
	increment.DivMod(numerator, totalShares, remainder)
	next, err := nativecommon.Add(acc, increment)
	if err != nil {
		return nil, nil, err
	}
	return next, remainder, nil
}
