// Package engine applies liquidity deposits and swaps to a single two-asset pool.
//
// Every operation is one transition: load both slots, validate and price with
// checked arithmetic, then commit both reserves in a single store write. Any
// failure happens before the write, so the pool is left exactly as it was.
// Transfers produced by an operation are returned to the caller and are never
// executed here.
package engine

import (
	"errors"
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/defistate/pairpool-go/protocols/pair/calculator"
	"github.com/defistate/pairpool-go/protocols/pair/calculator/safemath"
	"github.com/defistate/pairpool-go/protocols/pair/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the engine's dependencies.
type Config struct {
	Store store.Store
	// Custody is the account holding the pool's assets. Deposits are pulled into
	// it and swap payouts are sent from it.
	Custody  common.Address
	Rounding calculator.Rounding
	Logger   Logger
	Registry prometheus.Registerer
}

func (c *Config) validate() error {
	if c.Store == nil {
		return errors.New("config: Store cannot be nil")
	}
	if c.Custody == (common.Address{}) {
		return errors.New("config: Custody cannot be the zero address")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	return nil
}

// Engine is not safe for concurrent use; the host must serialize requests
// against the same pool.
type Engine struct {
	state    *store.PoolState
	custody  common.Address
	rounding calculator.Rounding
	logger   Logger
	metrics  *Metrics
}

// New constructs an Engine from a configuration, returning an error if the config is invalid.
func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	metrics, err := NewMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}
	return &Engine{
		state:    store.NewPoolState(cfg.Store),
		custody:  cfg.Custody,
		rounding: cfg.Rounding,
		logger:   cfg.Logger,
		metrics:  metrics,
	}, nil
}

// Pool returns the committed pool state.
func (e *Engine) Pool() (pair.Pool, error) {
	return e.state.Read()
}

// Instantiate creates the pool with zero reserves and fixed assets.
func (e *Engine) Instantiate(asset1, asset2 pair.Asset) (resp *Response, err error) {
	defer e.track(OperationInstantiate, &err)()

	pool, err := e.state.Init(asset1, asset2)
	if err != nil {
		return nil, err
	}
	e.metrics.setReserves(pool)
	e.logger.Info("pool instantiated", "token1", asset1.String(), "token2", asset2.String())

	return &Response{
		Operation:  OperationInstantiate,
		Pool:       pool,
		Transfers:  []pair.Instruction{},
		Attributes: []Attribute{{Key: "token1", Value: asset1.String()}, {Key: "token2", Value: asset2.String()}},
	}, nil
}

// ProvideLiquidity deposits req.Amount1 and req.Amount2. On an empty pool any pair
// is accepted and sets the price; otherwise the deposit must match the reserve
// ratio exactly. The response carries one transferFrom instruction per token slot.
func (e *Engine) ProvideLiquidity(req ProvideLiquidityRequest) (resp *Response, err error) {
	defer e.track(OperationProvideLiquidity, &err)()

	if err := checkAmounts(req.Amount1, req.Amount2); err != nil {
		return nil, err
	}

	prev, err := e.state.Read()
	if err != nil {
		return nil, err
	}

	diff, next, err := calculator.SimulateProvideLiquidity(req.Amount1, req.Amount2, prev)
	if err != nil {
		e.logger.Debug("liquidity rejected", "sender", req.Sender.Hex(), "token1_amount", req.Amount1.Dec(), "token2_amount", req.Amount2.Dec(), "error", err)
		return nil, err
	}

	transfers := make([]pair.Instruction, 0, 2)
	for _, deposit := range []struct {
		token  pair.Token
		amount *uint256.Int
	}{
		{next.Token1, req.Amount1},
		{next.Token2, req.Amount2},
	} {
		ins, ok, err := deposit.token.Asset.TransferFrom(req.Sender, e.custody, deposit.amount)
		if err != nil {
			return nil, err
		}
		if ok {
			transfers = append(transfers, ins)
		}
	}

	committed, err := e.commit(next)
	if err != nil {
		return nil, err
	}

	e.logger.Info("liquidity provided",
		"sender", req.Sender.Hex(),
		"token1_amount", req.Amount1.Dec(),
		"token2_amount", req.Amount2.Dec(),
		"reserve1", committed.Token1.Amount.Dec(),
		"reserve2", committed.Token2.Amount.Dec(),
	)

	return &Response{
		Operation: OperationProvideLiquidity,
		Pool:      committed,
		Diff:      diff,
		Transfers: transfers,
		Attributes: []Attribute{
			{Key: "token1_amount", Value: req.Amount1.Dec()},
			{Key: "token2_amount", Value: req.Amount2.Dec()},
		},
	}, nil
}

// Swap sells req.InputAmount of the asset in slot req.Input. The swap is rejected
// with calculator.ErrSlippage if it would pay out less than req.MinOutput. The
// response carries the payout instruction to req.Sender.
func (e *Engine) Swap(req SwapRequest) (resp *Response, err error) {
	defer e.track(OperationSwap, &err)()

	minOutput := req.MinOutput
	if minOutput == nil {
		minOutput = new(uint256.Int)
	}
	if err := checkAmounts(req.InputAmount, minOutput); err != nil {
		return nil, err
	}

	prev, err := e.state.Read()
	if err != nil {
		return nil, err
	}

	amountOut, diff, next, err := calculator.SimulateSwap(req.InputAmount, minOutput, req.Input, prev, e.rounding)
	if err != nil {
		e.logger.Debug("swap rejected", "sender", req.Sender.Hex(), "input", req.Input.String(), "input_amount", req.InputAmount.Dec(), "error", err)
		return nil, err
	}

	outputToken, err := next.Slot(req.Input.Other())
	if err != nil {
		return nil, err
	}
	transfers := []pair.Instruction{}
	if !amountOut.IsZero() {
		payout, err := outputToken.Asset.Transfer(e.custody, req.Sender, amountOut)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, payout)
	}

	committed, err := e.commit(next)
	if err != nil {
		return nil, err
	}

	e.logger.Info("swap executed",
		"sender", req.Sender.Hex(),
		"input", req.Input.String(),
		"input_amount", req.InputAmount.Dec(),
		"output_amount", amountOut.Dec(),
		"reserve1", committed.Token1.Amount.Dec(),
		"reserve2", committed.Token2.Amount.Dec(),
	)

	return &Response{
		Operation:    OperationSwap,
		Pool:         committed,
		Diff:         diff,
		OutputAmount: amountOut,
		Transfers:    transfers,
		Attributes: []Attribute{
			{Key: "input", Value: req.Input.String()},
			{Key: "input_amount", Value: req.InputAmount.Dec()},
			{Key: "output_amount", Value: amountOut.Dec()},
			{Key: "min_output", Value: minOutput.Dec()},
		},
	}, nil
}

// QuoteSwap prices a swap against the committed pool without changing it.
func (e *Engine) QuoteSwap(input pair.Selection, amountIn *uint256.Int) (out *uint256.Int, err error) {
	defer e.track(OperationQuote, &err)()

	if err := checkAmounts(amountIn); err != nil {
		return nil, err
	}
	pool, err := e.state.Read()
	if err != nil {
		return nil, err
	}
	return calculator.GetAmountOut(amountIn, input, pool, e.rounding)
}

func (e *Engine) commit(next pair.Pool) (pair.Pool, error) {
	committed, err := e.state.Write(next.Token1.Amount, next.Token2.Amount)
	if err != nil {
		return pair.Pool{}, fmt.Errorf("commit: %w", err)
	}
	e.metrics.setReserves(committed)
	return committed, nil
}

// track times an operation and counts its outcome once it returns.
func (e *Engine) track(op Operation, err *error) func() {
	timer := prometheus.NewTimer(e.metrics.operationDuration.WithLabelValues(string(op)))
	return func() {
		timer.ObserveDuration()
		e.metrics.observe(op, *err)
		if *err != nil && resultLabel(*err) == "storage_error" {
			e.logger.Error("operation failed", "operation", string(op), "error", *err)
		}
	}
}

func checkAmounts(amounts ...*uint256.Int) error {
	for _, a := range amounts {
		if a == nil {
			return calculator.ErrNilAmount
		}
		if !safemath.Fits(a) {
			return fmt.Errorf("%w: amount %s exceeds %d bits", safemath.ErrOverflow, a.Dec(), safemath.Bits)
		}
	}
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, safemath.ErrOverflow):
		return "overflow"
	case errors.Is(err, safemath.ErrDivideByZero):
		return "divide_by_zero"
	case errors.Is(err, calculator.ErrUnbalancedLiquidity):
		return "unbalanced_liquidity"
	case errors.Is(err, calculator.ErrSlippage):
		return "slippage"
	case errors.Is(err, store.ErrStorage):
		return "storage_error"
	default:
		return "invalid"
	}
}
