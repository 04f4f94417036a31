package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"

	"invariant/internal/clmm"
	"invariant/internal/engine"
	"invariant/internal/logging"
	"invariant/internal/numeric"
)

// runServe seeds a pool from config, then reads one JSON Request per line
// from stdin (or -file) and writes one JSON Response per line to stdout,
// executing each against the same long-lived engine — the command-surface
// analog of cmd/quote-service's long-running process, minus the HTTP
// transport (spec.md 5 requires the caller to serialize calls itself,
// which a line-at-a-time stdin loop does for free).
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	filePath := fs.String("file", "", "read commands from this file instead of stdin")
	cfg := loadConfig(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	logger := logging.MustNew(cfg.LogLevel)
	defer logger.Sync()

	e, transferer, poolKey, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := fundAdmin(ctx, e, transferer, poolKey, numeric.TokenAmountFromU64(1_000_000_000_000)); err != nil {
		fmt.Fprintln(os.Stderr, "invariant-cli: funding seed actor:", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if *filePath != "" {
		f, err := os.Open(*filePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invariant-cli: opening -file:", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		resp := Response{OK: true}
		if err := json.Unmarshal(line, &req); err != nil {
			resp = errResponse(fmt.Errorf("invariant-cli: decoding request: %w", err))
		} else {
			resp = dispatch(ctx, e, poolKey, req)
		}

		encoded, err := json.Marshal(resp)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invariant-cli: encoding response:", err)
			continue
		}
		out.Write(encoded)
		out.WriteByte('\n')
		out.Flush()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "invariant-cli: reading commands:", err)
		os.Exit(1)
	}
}

// dispatch executes a single Request's Op against e, translating its
// fields into the matching engine method call. Grounded on spec.md 6's
// command table; create_pool, deposit_token_pair and withdraw_token_pair
// have no case here and fail as unknown ops.
func dispatch(ctx context.Context, e *engine.Engine, poolKey clmm.PoolKey, req Request) Response {
	actor, err := actorOrAdmin(req.Actor)
	if err != nil {
		return errResponse(err)
	}

	switch req.Op {
	case "add_fee_tier":
		tier := clmm.FeeTier{Fee: numeric.PercentageFromScale(req.FeePercent, 12), TickSpacing: req.TickSpacing}
		if err := e.AddFeeTier(actor, tier); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "remove_fee_tier":
		tier := clmm.FeeTier{Fee: numeric.PercentageFromScale(req.FeePercent, 12), TickSpacing: req.TickSpacing}
		if err := e.RemoveFeeTier(actor, tier); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "create_position":
		liquidity, ok := parseLiquidity(req.Liquidity)
		if !ok {
			return errResponse(errInvalidAmount(req.Liquidity))
		}
		index, err := e.CreatePosition(actor, poolKey, req.LowerTick, req.UpperTick, liquidity, clmm.MinSqrtPrice, clmm.MaxSqrtPrice)
		if err != nil {
			return errResponse(err)
		}
		return Response{OK: true, Index: index}

	case "remove_position":
		if err := e.RemovePosition(actor, req.Index); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "claim_fee":
		if err := e.ClaimFee(actor, req.Index); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "transfer_position":
		recipient, err := clmm.ActorIDFromBase58(req.Recipient)
		if err != nil {
			return errResponse(err)
		}
		if err := e.TransferPosition(actor, req.Index, recipient); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "swap":
		amount, err := amountFromString(req.Amount)
		if err != nil {
			return errResponse(err)
		}
		limit := clmm.MinSqrtPrice
		if !req.XToY {
			limit = clmm.MaxSqrtPrice
		}
		result, err := e.Swap(actor, poolKey, req.XToY, amount, req.ByAmountIn, limit)
		if err != nil {
			return errResponse(err)
		}
		return swapResponse(result)

	case "quote":
		amount, err := amountFromString(req.Amount)
		if err != nil {
			return errResponse(err)
		}
		limit := clmm.MinSqrtPrice
		if !req.XToY {
			limit = clmm.MaxSqrtPrice
		}
		result, err := e.Quote(poolKey, req.XToY, amount, req.ByAmountIn, limit)
		if err != nil {
			return errResponse(err)
		}
		return swapResponse(result)

	case "deposit_single_token":
		amount, err := amountFromString(req.Amount)
		if err != nil {
			return errResponse(err)
		}
		tok := poolKey.TokenX
		if !req.XToY {
			tok = poolKey.TokenY
		}
		if err := e.DepositSingleToken(ctx, actor, tok, amount); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "withdraw_single_token":
		tok := poolKey.TokenX
		if !req.XToY {
			tok = poolKey.TokenY
		}
		var amountPtr *numeric.TokenAmount
		if req.Amount != "" {
			amount, err := amountFromString(req.Amount)
			if err != nil {
				return errResponse(err)
			}
			amountPtr = &amount
		}
		drained, err := e.WithdrawSingleToken(ctx, actor, tok, amountPtr)
		if err != nil {
			return errResponse(err)
		}
		return Response{OK: true, AmountOut: drained.Get().String()}

	case "change_protocol_fee":
		newFee := numeric.PercentageFromScale(mustUint64(req.NewFee), 12)
		if err := e.ChangeProtocolFee(actor, newFee); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "change_fee_receiver":
		recipient, err := clmm.ActorIDFromBase58(req.Recipient)
		if err != nil {
			return errResponse(err)
		}
		if err := e.ChangeFeeReceiver(actor, poolKey, recipient); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "withdraw_protocol_fee":
		if err := e.WithdrawProtocolFee(poolKey, actor); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	default:
		return errResponse(fmt.Errorf("invariant-cli: unknown op %q", req.Op))
	}
}

// parseLiquidity reads a Liquidity field as a plain base-10 integer
// (liquidity has no natural decimal-string JSON boundary type the way
// token amounts do, so it bypasses cosmossdk.io/math.Int).
func parseLiquidity(s string) (numeric.Liquidity, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return numeric.Liquidity{}, false
	}
	return numeric.NewLiquidity(n), true
}

func mustUint64(s string) uint64 {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0
	}
	return n.Uint64()
}
