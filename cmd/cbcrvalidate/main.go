// Command cbcrvalidate validates OECD Country-by-Country Reporting (CbCR)
// filings, given as JSON-encoded parsed reports, against the CbC XML
// Schema v2.0 business rules, the OECD's
// "28 common errors" guidance, and transitional Pillar Two safe-harbour
// heuristics.
package main

import (
	"fmt"
	"os"
)

const (
	exitOK         = 0 // Report has no error-or-worse findings
	exitViolations = 1 // Report has error-or-worse findings
	exitError      = 2 // Error occurred (file not found, decode error, etc.)
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return exitError
	}

	subcommand := os.Args[1]

	switch subcommand {
	case "validate":
		return runValidate(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", subcommand)
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: cbcrvalidate <command> [options]

Commands:
  validate    Validate a CbCR filing (given as parsed JSON) against the
              module's business, country, data-quality and Pillar Two rules

Use "cbcrvalidate <command> --help" for more information about a command.
`)
}
