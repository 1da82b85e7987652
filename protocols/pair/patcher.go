package pair

import (
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair/calculator/safemath"
	"github.com/holiman/uint256"
)

// SlotDelta is the change of one reserve. At most one side is non-zero for the
// diffs produced in this module, but Patcher accepts both.
type SlotDelta struct {
	Added   *uint256.Int `json:"added,omitempty"`
	Removed *uint256.Int `json:"removed,omitempty"`
}

// IsEmpty returns true if the delta changes nothing.
func (d SlotDelta) IsEmpty() bool {
	return isZero(d.Added) && isZero(d.Removed)
}

// PoolDiff describes the reserve changes of a single pool transition.
type PoolDiff struct {
	Token1 SlotDelta `json:"token1"`
	Token2 SlotDelta `json:"token2"`
}

// IsEmpty returns true if the diff contains no changes.
func (d PoolDiff) IsEmpty() bool {
	return d.Token1.IsEmpty() && d.Token2.IsEmpty()
}

// Slot returns the delta of slot s.
func (d *PoolDiff) Slot(s Selection) *SlotDelta {
	if s == Slot2 {
		return &d.Token2
	}
	return &d.Token1
}

// Patcher builds the pool that results from applying diff to prev. prev is never
// mutated. Additions are applied before removals, and every step is checked, so a
// diff that would overflow or drive a reserve negative fails without a result.
func Patcher(prev Pool, diff PoolDiff) (Pool, error) {
	next := prev.Copy()

	amount1, err := applyDelta(prev.Token1.Amount, diff.Token1)
	if err != nil {
		return Pool{}, fmt.Errorf("patch %s: %w", Slot1, err)
	}
	amount2, err := applyDelta(prev.Token2.Amount, diff.Token2)
	if err != nil {
		return Pool{}, fmt.Errorf("patch %s: %w", Slot2, err)
	}

	next.Token1.Amount = amount1
	next.Token2.Amount = amount2
	return next, nil
}

func applyDelta(amount *uint256.Int, delta SlotDelta) (*uint256.Int, error) {
	out := new(uint256.Int).Set(amountOrZero(amount))
	var err error
	if !isZero(delta.Added) {
		if out, err = safemath.Add(out, delta.Added); err != nil {
			return nil, err
		}
	}
	if !isZero(delta.Removed) {
		if out, err = safemath.Sub(out, delta.Removed); err != nil {
			return nil, err
		}
	}
	return out, nil
}
