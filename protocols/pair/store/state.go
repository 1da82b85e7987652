package store

import (
	"errors"
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/defistate/pairpool-go/protocols/pair/calculator/safemath"
	"github.com/holiman/uint256"
)

// PoolState is the pool's reserve pair backed by a Store. It only stores; pricing
// and ratio rules are enforced by its callers.
// PoolState adds no locking of its own: at most one writer may be in flight.
type PoolState struct {
	store Store
}

// NewPoolState wraps store.
func NewPoolState(store Store) *PoolState {
	return &PoolState{store: store}
}

// Init creates the pool with both reserves at zero and the given assets.
func (s *PoolState) Init(asset1, asset2 pair.Asset) (pair.Pool, error) {
	if asset1 == nil || asset2 == nil {
		return pair.Pool{}, fmt.Errorf("%w: both assets are required", pair.ErrInvalidAsset)
	}

	_, err := s.store.Load(pair.Slot1.SlotName())
	switch {
	case err == nil:
		return pair.Pool{}, ErrAlreadyInitialized
	case !errors.Is(err, ErrNotFound):
		return pair.Pool{}, err
	}

	pool := pair.Pool{
		Token1: pair.Token{Amount: new(uint256.Int), Asset: asset1},
		Token2: pair.Token{Amount: new(uint256.Int), Asset: asset2},
	}
	if err := s.save(pool); err != nil {
		return pair.Pool{}, err
	}
	return pool, nil
}

// Read returns both slots.
func (s *PoolState) Read() (pair.Pool, error) {
	token1, err := s.load(pair.Slot1)
	if err != nil {
		return pair.Pool{}, err
	}
	token2, err := s.load(pair.Slot2)
	if err != nil {
		return pair.Pool{}, err
	}
	return pair.Pool{Token1: token1, Token2: token2}, nil
}

// Write replaces both reserves in one store write. Assets are never changed.
func (s *PoolState) Write(amount1, amount2 *uint256.Int) (pair.Pool, error) {
	if !safemath.Fits(amount1) || !safemath.Fits(amount2) {
		return pair.Pool{}, fmt.Errorf("%w: reserve exceeds %d bits", safemath.ErrOverflow, safemath.Bits)
	}
	current, err := s.Read()
	if err != nil {
		return pair.Pool{}, err
	}
	next := current.WithAmounts(amount1, amount2)
	if err := s.save(next); err != nil {
		return pair.Pool{}, err
	}
	return next, nil
}

func (s *PoolState) load(sel pair.Selection) (pair.Token, error) {
	t, err := s.store.Load(sel.SlotName())
	if errors.Is(err, ErrNotFound) {
		return pair.Token{}, fmt.Errorf("%w: missing %s", ErrNotInitialized, sel)
	}
	return t, err
}

func (s *PoolState) save(pool pair.Pool) error {
	return s.store.Save(
		Entry{Slot: pair.Slot1.SlotName(), Token: pool.Token1},
		Entry{Slot: pair.Slot2.SlotName(), Token: pool.Token2},
	)
}
