package pair

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AssetKind tags the persisted form of an Asset.
type AssetKind string

const (
	// AssetKindNative is the chain's own currency, identified by a denomination.
	AssetKindNative AssetKind = "native"
	// AssetKindToken is an external token contract.
	AssetKindToken AssetKind = "token"
)

var (
	// ErrUnknownAssetKind is returned when decoding an asset of an unsupported kind.
	ErrUnknownAssetKind = errors.New("unknown asset kind")
	// ErrInvalidAsset is returned for malformed asset identifiers.
	ErrInvalidAsset = errors.New("invalid asset")
)

// Asset identifies one of the two fungible assets held by a pool. It is either a
// NativeAsset or a TokenAsset; the set is closed.
type Asset interface {
	Kind() AssetKind
	String() string

	// Transfer returns the instruction that moves amount of this asset out of the
	// pool's custody to recipient.
	Transfer(custody, recipient common.Address, amount *uint256.Int) (Instruction, error)

	// TransferFrom returns the instruction that pulls amount from owner into
	// recipient. ok is false when the asset arrives with the request itself and no
	// instruction is needed.
	TransferFrom(owner, recipient common.Address, amount *uint256.Int) (ins Instruction, ok bool, err error)

	isAsset()
}

// NativeAsset is the chain's native currency.
type NativeAsset struct {
	Denom string
}

func (NativeAsset) Kind() AssetKind { return AssetKindNative }

func (a NativeAsset) String() string { return string(AssetKindNative) + ":" + a.Denom }

// Transfer sends amount of the native coin from custody to recipient.
func (a NativeAsset) Transfer(custody, recipient common.Address, amount *uint256.Int) (Instruction, error) {
	return Instruction{
		Kind:      InstructionNativeSend,
		Asset:     a.String(),
		Owner:     custody,
		Recipient: recipient,
		Amount:    new(uint256.Int).Set(amount),
	}, nil
}

// TransferFrom never produces an instruction: native funds are attached by the
// host before the request reaches the pool.
func (NativeAsset) TransferFrom(common.Address, common.Address, *uint256.Int) (Instruction, bool, error) {
	return Instruction{}, false, nil
}

func (NativeAsset) isAsset() {}

// TokenAsset is a token contract holding balances on behalf of accounts.
type TokenAsset struct {
	Contract common.Address
}

func (TokenAsset) Kind() AssetKind { return AssetKindToken }

func (a TokenAsset) String() string { return string(AssetKindToken) + ":" + a.Contract.Hex() }

// Transfer calls the token's transfer from custody to recipient.
func (a TokenAsset) Transfer(custody, recipient common.Address, amount *uint256.Int) (Instruction, error) {
	calldata, err := erc20ABI.Pack("transfer", recipient, amount.ToBig())
	if err != nil {
		return Instruction{}, fmt.Errorf("pack transfer: %w", err)
	}
	contract := a.Contract
	return Instruction{
		Kind:      InstructionTokenTransfer,
		Asset:     a.String(),
		Contract:  &contract,
		Owner:     custody,
		Recipient: recipient,
		Amount:    new(uint256.Int).Set(amount),
		Calldata:  calldata,
	}, nil
}

// TransferFrom pulls amount from owner to recipient through the token's allowance.
func (a TokenAsset) TransferFrom(owner, recipient common.Address, amount *uint256.Int) (Instruction, bool, error) {
	calldata, err := erc20ABI.Pack("transferFrom", owner, recipient, amount.ToBig())
	if err != nil {
		return Instruction{}, false, fmt.Errorf("pack transferFrom: %w", err)
	}
	contract := a.Contract
	return Instruction{
		Kind:      InstructionTokenTransferFrom,
		Asset:     a.String(),
		Contract:  &contract,
		Owner:     owner,
		Recipient: recipient,
		Amount:    new(uint256.Int).Set(amount),
		Calldata:  calldata,
	}, true, nil
}

func (TokenAsset) isAsset() {}

// ParseAsset parses the "native:<denom>" and "token:<0xaddress>" forms produced by
// Asset.String.
func ParseAsset(s string) (Asset, error) {
	kind, value, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || value == "" {
		return nil, fmt.Errorf("%w: %q, expected <kind>:<value>", ErrInvalidAsset, s)
	}
	switch AssetKind(kind) {
	case AssetKindNative:
		return NativeAsset{Denom: value}, nil
	case AssetKindToken:
		if !common.IsHexAddress(value) {
			return nil, fmt.Errorf("%w: %q is not a contract address", ErrInvalidAsset, value)
		}
		return TokenAsset{Contract: common.HexToAddress(value)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetKind, kind)
	}
}

// assetJSON is the persisted form of an Asset.
type assetJSON struct {
	Kind     AssetKind       `json:"kind"`
	Denom    string          `json:"denom,omitempty"`
	Contract *common.Address `json:"contract,omitempty"`
}

func marshalAsset(a Asset) (assetJSON, error) {
	switch v := a.(type) {
	case NativeAsset:
		return assetJSON{Kind: AssetKindNative, Denom: v.Denom}, nil
	case TokenAsset:
		contract := v.Contract
		return assetJSON{Kind: AssetKindToken, Contract: &contract}, nil
	case nil:
		return assetJSON{}, fmt.Errorf("%w: nil asset", ErrInvalidAsset)
	default:
		return assetJSON{}, fmt.Errorf("%w: %T", ErrUnknownAssetKind, a)
	}
}

func (j assetJSON) asset() (Asset, error) {
	switch j.Kind {
	case AssetKindNative:
		if j.Denom == "" {
			return nil, fmt.Errorf("%w: native asset without denom", ErrInvalidAsset)
		}
		return NativeAsset{Denom: j.Denom}, nil
	case AssetKindToken:
		if j.Contract == nil {
			return nil, fmt.Errorf("%w: token asset without contract", ErrInvalidAsset)
		}
		return TokenAsset{Contract: *j.Contract}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetKind, j.Kind)
	}
}

// AssetEqual reports whether a and b identify the same asset.
func AssetEqual(a, b Asset) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
}
