package pair

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrInvalidSelection is returned for a Selection other than Slot1 or Slot2.
var ErrInvalidSelection = errors.New("invalid slot selection")

// Selection picks one of the two pool slots.
type Selection uint8

const (
	Slot1 Selection = iota + 1
	Slot2
)

// Valid reports whether s names an existing slot.
func (s Selection) Valid() bool {
	return s == Slot1 || s == Slot2
}

// Other returns the opposite slot.
func (s Selection) Other() Selection {
	if s == Slot1 {
		return Slot2
	}
	return Slot1
}

// SlotName is the storage key of the slot.
func (s Selection) SlotName() string {
	switch s {
	case Slot1:
		return "token1"
	case Slot2:
		return "token2"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

func (s Selection) String() string {
	return s.SlotName()
}

// ParseSelection accepts "token1"/"token2" as well as "1"/"2".
func ParseSelection(s string) (Selection, error) {
	switch s {
	case "token1", "1":
		return Slot1, nil
	case "token2", "2":
		return Slot2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, s)
	}
}

// Token is one pool slot: a reserve amount tagged with its asset.
type Token struct {
	Amount *uint256.Int
	Asset  Asset
}

type tokenJSON struct {
	Amount *uint256.Int `json:"amount"`
	Asset  assetJSON    `json:"asset"`
}

func (t Token) MarshalJSON() ([]byte, error) {
	a, err := marshalAsset(t.Asset)
	if err != nil {
		return nil, err
	}
	amount := t.Amount
	if amount == nil {
		amount = new(uint256.Int)
	}
	return json.Marshal(tokenJSON{Amount: amount, Asset: a})
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a, err := raw.Asset.asset()
	if err != nil {
		return err
	}
	if raw.Amount == nil {
		raw.Amount = new(uint256.Int)
	}
	t.Amount = raw.Amount
	t.Asset = a
	return nil
}

// Copy returns a Token that does not share its amount with t.
func (t Token) Copy() Token {
	c := t
	if t.Amount != nil {
		c.Amount = new(uint256.Int).Set(t.Amount)
	}
	return c
}

// Pool is the state of a two-asset pool.
type Pool struct {
	Token1 Token `json:"token1"`
	Token2 Token `json:"token2"`
}

// Copy returns a deep copy of p, so the result can be modified without touching p.
func (p Pool) Copy() Pool {
	return Pool{Token1: p.Token1.Copy(), Token2: p.Token2.Copy()}
}

// IsEmpty reports whether both reserves are zero, meaning no price has been
// established yet.
func (p Pool) IsEmpty() bool {
	return isZero(p.Token1.Amount) && isZero(p.Token2.Amount)
}

// Slot returns the token in slot s.
func (p Pool) Slot(s Selection) (Token, error) {
	switch s {
	case Slot1:
		return p.Token1, nil
	case Slot2:
		return p.Token2, nil
	default:
		return Token{}, fmt.Errorf("%w: %d", ErrInvalidSelection, uint8(s))
	}
}

// GetReserves returns the reserves on the input and output side of a swap that
// sells the asset in slot in.
func (p Pool) GetReserves(in Selection) (reserveIn, reserveOut *uint256.Int, err error) {
	if !in.Valid() {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidSelection, uint8(in))
	}
	tokenIn, _ := p.Slot(in)
	tokenOut, _ := p.Slot(in.Other())
	return amountOrZero(tokenIn.Amount), amountOrZero(tokenOut.Amount), nil
}

// WithAmounts returns a copy of p with both reserves replaced; assets are kept.
func (p Pool) WithAmounts(amount1, amount2 *uint256.Int) Pool {
	n := p.Copy()
	n.Token1.Amount = new(uint256.Int).Set(amount1)
	n.Token2.Amount = new(uint256.Int).Set(amount2)
	return n
}

func isZero(x *uint256.Int) bool {
	return x == nil || x.IsZero()
}

func amountOrZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
