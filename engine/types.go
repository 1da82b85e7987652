package engine

import (
	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Operation names an engine operation in metrics, logs and responses.
type Operation string

const (
	OperationInstantiate      Operation = "instantiate"
	OperationProvideLiquidity Operation = "provide_liquidity"
	OperationSwap             Operation = "swap"
	OperationQuote            Operation = "quote"
)

// ProvideLiquidityRequest deposits both assets in the pool's current ratio.
type ProvideLiquidityRequest struct {
	Sender  common.Address `json:"sender"`
	Amount1 *uint256.Int   `json:"token1Amount"`
	Amount2 *uint256.Int   `json:"token2Amount"`
}

// SwapRequest sells InputAmount of the asset in slot Input for the other asset.
type SwapRequest struct {
	Sender      common.Address `json:"sender"`
	Input       pair.Selection `json:"input"`
	InputAmount *uint256.Int   `json:"inputAmount"`
	MinOutput   *uint256.Int   `json:"minOutput"`
}

// Attribute is one key/value pair of an operation's audit record.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the outcome of a committed operation. Transfers are handed to the
// host for execution; the engine has already committed Pool when it returns.
type Response struct {
	Operation    Operation          `json:"operation"`
	Pool         pair.Pool          `json:"pool"`
	Diff         pair.PoolDiff      `json:"diff"`
	OutputAmount *uint256.Int       `json:"outputAmount,omitempty"`
	Transfers    []pair.Instruction `json:"transfers"`
	Attributes   []Attribute        `json:"attributes"`
}

// Attribute returns the value of the attribute named key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
