package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"invariant/internal/clmm"
	"invariant/internal/logging"
	"invariant/internal/numeric"
)

// runQuote seeds a pool and a wide liquidity position from config, then
// prints a single swap quote as JSON — the one-shot analog of cmd/quote,
// which seeds nothing but instead queries a live chain for the same
// single-answer contract: flags in, one JSON object out.
func runQuote(args []string) {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	xToY := fs.Bool("x-to-y", true, "swap direction: token X into token Y")
	byAmountIn := fs.Bool("by-amount-in", true, "amount is the input (true) or desired output (false)")
	amountStr := fs.String("amount", "", "swap amount, smallest units (required)")
	liquidityStr := fs.String("seed-liquidity", "1000000000", "liquidity to seed the simulated pool with before quoting")
	cfg := loadConfig(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	if *amountStr == "" {
		fmt.Fprintln(os.Stderr, "invariant-cli quote: -amount is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	logger := logging.Noop() // quote is one-shot; operational logging would just be noise on stdout
	e, transferer, poolKey, err := buildEngine(cfg, logger)
	if err != nil {
		outputQuoteError(err)
		os.Exit(1)
	}

	ctx := context.Background()
	fundAmount := numeric.TokenAmountFromU64(1_000_000_000_000)
	if err := fundAdmin(ctx, e, transferer, poolKey, fundAmount); err != nil {
		outputQuoteError(err)
		os.Exit(1)
	}

	liquidity, ok := parseLiquidity(*liquidityStr)
	if !ok {
		outputQuoteError(errInvalidAmount(*liquidityStr))
		os.Exit(1)
	}
	tickSpacing := poolKey.FeeTier.TickSpacing
	lower := -100 * int32(tickSpacing)
	upper := 100 * int32(tickSpacing)
	if _, err := e.CreatePosition(adminActor, poolKey, lower, upper, liquidity, clmm.MinSqrtPrice, clmm.MaxSqrtPrice); err != nil {
		outputQuoteError(fmt.Errorf("seeding quote liquidity: %w", err))
		os.Exit(1)
	}

	amount, err := amountFromString(*amountStr)
	if err != nil {
		outputQuoteError(err)
		os.Exit(1)
	}

	limit := clmm.MinSqrtPrice
	if !*xToY {
		limit = clmm.MaxSqrtPrice
	}
	result, err := e.Quote(poolKey, *xToY, amount, *byAmountIn, limit)
	if err != nil {
		outputQuoteError(err)
		os.Exit(1)
	}

	jsonData, err := json.MarshalIndent(swapResponse(result), "", "  ")
	if err != nil {
		outputQuoteError(err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}

func outputQuoteError(err error) {
	jsonData, _ := json.MarshalIndent(errResponse(err), "", "  ")
	fmt.Fprintln(os.Stderr, string(jsonData))
}
