package calculator

import (
	"errors"
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/defistate/pairpool-go/protocols/pair/calculator/safemath"
	"github.com/holiman/uint256"
)

var (
	// ErrNilAmount is returned when a nil pointer is passed for an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrUnbalancedLiquidity is returned when a deposit does not match the current reserve ratio.
	ErrUnbalancedLiquidity = errors.New("unbalanced liquidity")
	// ErrSlippage is returned when a swap would pay out less than the requested minimum.
	ErrSlippage = errors.New("swap output below minimum")
)

// Rounding selects how the post-swap output reserve is rounded.
type Rounding uint8

const (
	// RoundFloorQuotient floors the remaining output reserve, matching the
	// arithmetic of existing deployments bit for bit. It can pay out up to one
	// unit more than the exact curve, so reserve1*reserve2 may shrink slightly.
	RoundFloorQuotient Rounding = iota
	// RoundInFavorOfPool rounds the remaining output reserve up, so the trader
	// never receives more than the exact curve pays and reserve1*reserve2 never
	// decreases across a swap.
	RoundInFavorOfPool
)

func (r Rounding) String() string {
	switch r {
	case RoundFloorQuotient:
		return "floor"
	case RoundInFavorOfPool:
		return "pool"
	default:
		return fmt.Sprintf("rounding(%d)", uint8(r))
	}
}

// ParseRounding accepts the names returned by Rounding.String. An empty string
// selects RoundFloorQuotient.
func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "", "floor":
		return RoundFloorQuotient, nil
	case "pool":
		return RoundInFavorOfPool, nil
	default:
		return 0, fmt.Errorf("unknown rounding %q", s)
	}
}

func (r Rounding) div(x, y *uint256.Int) (*uint256.Int, error) {
	if r == RoundFloorQuotient {
		return safemath.Div(x, y)
	}
	return safemath.DivCeil(x, y)
}

// CheckBalanced verifies that deposit1:deposit2 matches the pool's reserve ratio.
// An empty pool accepts any pair, since the first deposit sets the price.
//
// The ratio is compared by cross-multiplication (deposit2*reserve1 == deposit1*reserve2)
// on the exact 256-bit products, so no division and no rounding is involved.
func CheckBalanced(deposit1, deposit2 *uint256.Int, pool pair.Pool) error {
	if deposit1 == nil || deposit2 == nil {
		return ErrNilAmount
	}
	if pool.IsEmpty() {
		return nil
	}

	reserve1, reserve2, err := pool.GetReserves(pair.Slot1)
	if err != nil {
		return err
	}

	lhs, err := safemath.MulWide(deposit2, reserve1)
	if err != nil {
		return err
	}
	rhs, err := safemath.MulWide(deposit1, reserve2)
	if err != nil {
		return err
	}
	if !lhs.Eq(rhs) {
		return fmt.Errorf("%w: deposit %s:%s does not match reserves %s:%s",
			ErrUnbalancedLiquidity, deposit1.Dec(), deposit2.Dec(), reserve1.Dec(), reserve2.Dec())
	}
	return nil
}

// SimulateProvideLiquidity validates a deposit and returns the reserve diff together
// with the resulting pool. The input pool is not modified.
func SimulateProvideLiquidity(deposit1, deposit2 *uint256.Int, pool pair.Pool) (pair.PoolDiff, pair.Pool, error) {
	if err := CheckBalanced(deposit1, deposit2, pool); err != nil {
		return pair.PoolDiff{}, pair.Pool{}, err
	}

	diff := pair.PoolDiff{
		Token1: pair.SlotDelta{Added: new(uint256.Int).Set(deposit1)},
		Token2: pair.SlotDelta{Added: new(uint256.Int).Set(deposit2)},
	}
	next, err := pair.Patcher(pool, diff)
	if err != nil {
		return pair.PoolDiff{}, pair.Pool{}, err
	}
	return diff, next, nil
}

// GetAmountOut prices a swap of amountIn of the asset in slot in against the
// constant product of the reserves:
//
//	k           = reserveIn * reserveOut
//	quotient    = k / (reserveIn + amountIn)
//	amountOut   = reserveOut - quotient
//
// The quotient is rounded according to rounding. No fee is charged.
func GetAmountOut(amountIn *uint256.Int, in pair.Selection, pool pair.Pool, rounding Rounding) (*uint256.Int, error) {
	if amountIn == nil {
		return nil, ErrNilAmount
	}

	reserveIn, reserveOut, err := pool.GetReserves(in)
	if err != nil {
		return nil, err
	}

	k, err := safemath.Mul(reserveIn, reserveOut)
	if err != nil {
		return nil, fmt.Errorf("constant product: %w", err)
	}
	newReserveIn, err := safemath.Add(reserveIn, amountIn)
	if err != nil {
		return nil, fmt.Errorf("input reserve: %w", err)
	}
	quotient, err := rounding.div(k, newReserveIn)
	if err != nil {
		return nil, fmt.Errorf("output reserve: %w", err)
	}
	amountOut, err := safemath.Sub(reserveOut, quotient)
	if err != nil {
		return nil, fmt.Errorf("output amount: %w", err)
	}
	return amountOut, nil
}

// SimulateSwap prices a swap, enforces minOutput and returns the output amount,
// the reserve diff and the resulting pool. A nil minOutput disables the check.
// The input pool is not modified.
func SimulateSwap(
	amountIn *uint256.Int,
	minOutput *uint256.Int,
	in pair.Selection,
	pool pair.Pool,
	rounding Rounding,
) (*uint256.Int, pair.PoolDiff, pair.Pool, error) {
	amountOut, err := GetAmountOut(amountIn, in, pool, rounding)
	if err != nil {
		return nil, pair.PoolDiff{}, pair.Pool{}, err
	}
	if minOutput != nil && amountOut.Lt(minOutput) {
		return nil, pair.PoolDiff{}, pair.Pool{}, fmt.Errorf("%w: got %s, want at least %s", ErrSlippage, amountOut.Dec(), minOutput.Dec())
	}

	var diff pair.PoolDiff
	diff.Slot(in).Added = new(uint256.Int).Set(amountIn)
	diff.Slot(in.Other()).Removed = new(uint256.Int).Set(amountOut)

	next, err := pair.Patcher(pool, diff)
	if err != nil {
		return nil, pair.PoolDiff{}, pair.Pool{}, err
	}
	return amountOut, diff, next, nil
}

// GetProduct returns reserve1 * reserve2 as an exact 256-bit value.
func GetProduct(pool pair.Pool) (*uint256.Int, error) {
	reserve1, reserve2, err := pool.GetReserves(pair.Slot1)
	if err != nil {
		return nil, err
	}
	return safemath.MulWide(reserve1, reserve2)
}
