package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/defistate/pairpool-go/cmd/poolctl/config"
	"github.com/defistate/pairpool-go/engine"
	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/defistate/pairpool-go/protocols/pair/calculator"
	"github.com/defistate/pairpool-go/protocols/pair/calculator/safemath"
	"github.com/defistate/pairpool-go/protocols/pair/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

const usage = `usage: poolctl [--config path] <command> [flags]

commands:
  init     --asset1 <native:denom|token:0xaddr> --asset2 <...>
  provide  --sender 0xaddr --amount1 N --amount2 N
  swap     --sender 0xaddr --input token1|token2 --amount N [--min-output N]
  quote    --input token1|token2 --amount N
  show
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, prometheus.DefaultRegisterer); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, registry prometheus.Registerer) error {
	global := pflag.NewFlagSet("poolctl", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "config.yaml", "Path to the configuration file.")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	rootLogger := newLogger(cfg, stderr)

	rounding, err := calculator.ParseRounding(cfg.Rounding)
	if err != nil {
		return err
	}

	db, err := store.OpenLevelDB(cfg.StorePath, cfg.SyncWrites)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			rootLogger.Error("Failed to close store", "error", cerr)
		}
	}()

	pool, err := engine.New(&engine.Config{
		Store:    db,
		Custody:  cfg.CustodyAddress(),
		Rounding: rounding,
		Logger:   rootLogger.With("component", "engine"),
		Registry: registry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	command, cmdArgs := global.Arg(0), global.Args()[1:]
	var out any
	switch command {
	case "init":
		out, err = runInit(pool, cmdArgs)
	case "provide":
		out, err = runProvide(pool, cmdArgs)
	case "swap":
		out, err = runSwap(pool, cmdArgs)
	case "quote":
		out, err = runQuote(pool, cmdArgs)
	case "show":
		out, err = pool.Pool()
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newLogger(cfg *config.ClientConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func runInit(e *engine.Engine, args []string) (*engine.Response, error) {
	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	asset1 := fs.String("asset1", "", "asset held in slot token1")
	asset2 := fs.String("asset2", "", "asset held in slot token2")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	a1, err := pair.ParseAsset(*asset1)
	if err != nil {
		return nil, fmt.Errorf("asset1: %w", err)
	}
	a2, err := pair.ParseAsset(*asset2)
	if err != nil {
		return nil, fmt.Errorf("asset2: %w", err)
	}
	return e.Instantiate(a1, a2)
}

func runProvide(e *engine.Engine, args []string) (*engine.Response, error) {
	fs := pflag.NewFlagSet("provide", pflag.ContinueOnError)
	sender := fs.String("sender", "", "depositor address")
	amount1 := fs.String("amount1", "0", "token1 deposit")
	amount2 := fs.String("amount2", "0", "token2 deposit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	from, err := parseAddress("sender", *sender)
	if err != nil {
		return nil, err
	}
	a1, err := parseAmount("amount1", *amount1)
	if err != nil {
		return nil, err
	}
	a2, err := parseAmount("amount2", *amount2)
	if err != nil {
		return nil, err
	}
	return e.ProvideLiquidity(engine.ProvideLiquidityRequest{Sender: from, Amount1: a1, Amount2: a2})
}

func runSwap(e *engine.Engine, args []string) (*engine.Response, error) {
	fs := pflag.NewFlagSet("swap", pflag.ContinueOnError)
	sender := fs.String("sender", "", "trader address receiving the output")
	input := fs.String("input", "token1", "slot of the asset being sold")
	amount := fs.String("amount", "", "input amount")
	minOutput := fs.String("min-output", "0", "minimum acceptable output amount")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	from, err := parseAddress("sender", *sender)
	if err != nil {
		return nil, err
	}
	sel, err := pair.ParseSelection(*input)
	if err != nil {
		return nil, err
	}
	in, err := parseAmount("amount", *amount)
	if err != nil {
		return nil, err
	}
	floor, err := parseAmount("min-output", *minOutput)
	if err != nil {
		return nil, err
	}
	return e.Swap(engine.SwapRequest{Sender: from, Input: sel, InputAmount: in, MinOutput: floor})
}

type quote struct {
	Input        string       `json:"input"`
	InputAmount  *uint256.Int `json:"inputAmount"`
	OutputAmount *uint256.Int `json:"outputAmount"`
}

func runQuote(e *engine.Engine, args []string) (*quote, error) {
	fs := pflag.NewFlagSet("quote", pflag.ContinueOnError)
	input := fs.String("input", "token1", "slot of the asset being sold")
	amount := fs.String("amount", "", "input amount")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	sel, err := pair.ParseSelection(*input)
	if err != nil {
		return nil, err
	}
	in, err := parseAmount("amount", *amount)
	if err != nil {
		return nil, err
	}
	out, err := e.QuoteSwap(sel, in)
	if err != nil {
		return nil, err
	}
	return &quote{Input: sel.SlotName(), InputAmount: in, OutputAmount: out}, nil
}

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", field, s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(field, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	a, err := safemath.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return a, nil
}
