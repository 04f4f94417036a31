// Command invariant-cli drives internal/engine from the command line: a
// "serve" subcommand reads newline-delimited JSON commands and executes
// them against a seeded engine, and a "quote" subcommand does the same
// one-shot for a single swap quote. Structurally the analog of the
// teacher's cmd/quote-service (long-running, JSON in/out) and cmd/quote
// (one-shot, flag-driven) collapsed into one binary with subcommands,
// since neither teacher subcommand needed its own module.
package main

import (
	"flag"
	"fmt"
	"os"

	"invariant/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "quote":
		runQuote(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "invariant-cli: unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: invariant-cli <subcommand> [flags]")
	fmt.Fprintln(os.Stderr, "\nSubcommands:")
	fmt.Fprintln(os.Stderr, "  serve   seed a pool from config, execute newline-delimited JSON commands from stdin or -file")
	fmt.Fprintln(os.Stderr, "  quote   seed a pool from config, print a single swap quote as JSON")
}

// loadConfig loads config.Config via the shared .env+flags+env-vars
// layering (internal/config.Load) and binds its overridable fields onto fs,
// so a subcommand can register its own flags on the same set before
// parsing.
func loadConfig(fs *flag.FlagSet) config.Config {
	cfg := config.Load(".env")
	cfg.BindFlags(fs)
	return cfg
}
