package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/term"

	"github.com/oecdtools/cbcrval"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		format       string
		country      string
		fiscalYear   int
		strict       bool
		failFast     bool
		checkPillar2 bool
		maxIssues    int
	)
	fs.StringVar(&format, "format", "text", "Output format: text, json")
	fs.StringVar(&country, "country", "LU", "Reporting country, ISO 3166-1 alpha-2")
	fs.IntVar(&fiscalYear, "fiscal-year", time.Now().Year(), "Fiscal year under review")
	fs.BoolVar(&strict, "strict", false, "Promote warning findings to error severity")
	fs.BoolVar(&failFast, "fail-fast", false, "Stop after the first critical finding")
	fs.BoolVar(&checkPillar2, "pillar2", true, "Run the Pillar Two safe-harbour estimator")
	fs.IntVar(&maxIssues, "max-issues", 0, "Stop after this many findings (0 = unlimited)")
	fs.Usage = validateUsage
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		validateUsage()
		return exitError
	}
	filename := fs.Arg(0)

	opts := cbcrval.DefaultOptions()
	opts.Country = country
	opts.FiscalYear = fiscalYear
	opts.StrictMode = strict
	opts.FailFast = failFast
	opts.CheckPillar2 = checkPillar2
	opts.MaxIssues = maxIssues

	report, err := validateFile(filename, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	switch format {
	case "json":
		outputJSON(report)
	case "text":
		outputText(report)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (use 'text' or 'json')\n", format)
		return exitError
	}

	if report.Summary.Critical+report.Summary.Errors > 0 {
		return exitViolations
	}
	return exitOK
}

func validateFile(filename string, opts cbcrval.Options) (cbcrval.ValidationReport, error) {
	f, err := os.Open(filename)
	if err != nil {
		return cbcrval.ValidationReport{}, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return cbcrval.ValidationReport{}, fmt.Errorf("stat %s: %w", filename, err)
	}

	var parsed cbcrval.ParsedReport
	if err := json.NewDecoder(f).Decode(&parsed); err != nil {
		return cbcrval.ValidationReport{}, fmt.Errorf("decoding %s: %w", filename, err)
	}

	engine := cbcrval.DefaultEngine()
	req := cbcrval.ValidationRequest{
		Report:     &parsed,
		Options:    opts,
		Filename:   filename,
		FileSize:   info.Size(),
		UploadedAt: info.ModTime(),
	}
	return engine.Validate(req), nil
}

func outputJSON(report cbcrval.ValidationReport) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}

func outputText(report cbcrval.ValidationReport) {
	width := detectTerminalWidth()

	if report.Summary.Critical+report.Summary.Errors == 0 {
		fmt.Printf("✓ %s is valid (%d findings, 0 critical/error)\n", report.Filename, report.Summary.Total)
	} else {
		fmt.Printf("✗ %s has %d error-or-worse finding(s)\n", report.Filename,
			report.Summary.Critical+report.Summary.Errors)
	}
	fmt.Printf("  UPE: %s (%s)   Fiscal year: %d   Jurisdictions: %d   Entities: %d\n",
		report.UPEName, report.UPEJurisdiction, report.FiscalYear, report.JurisdictionCount, report.EntityCount)

	ruleCol := 12
	sevCol := 10
	msgCol := width - ruleCol - sevCol - 4
	if msgCol < 20 {
		msgCol = 20
	}

	for _, r := range report.Results {
		msg := r.Message
		if len(msg) > msgCol {
			msg = msg[:msgCol-1] + "…"
		}
		fmt.Printf("  %-*s %-*s %s\n", ruleCol, r.RuleID, sevCol, r.Severity, msg)
		if r.XPath != "" {
			fmt.Printf("  %*s  at %s\n", ruleCol+sevCol, "", r.XPath)
		}
		if r.Suggestion != "" {
			fmt.Printf("  %*s  suggestion: %s\n", ruleCol+sevCol, "", r.Suggestion)
		}
	}
}

func detectTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if c := os.Getenv("COLUMNS"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			return n
		}
	}
	return 100
}

func validateUsage() {
	fmt.Fprintf(os.Stderr, `Usage: cbcrvalidate validate [options] <file.json>

Validates a parsed CbCR filing (JSON encoding of a ParsedReport) against
this module's business, country, data-quality and Pillar Two rules.

Options:
  --format string       Output format: text, json (default "text")
  --country string      Reporting country, ISO 3166-1 alpha-2 (default "LU")
  --fiscal-year int     Fiscal year under review (default: current year)
  --strict              Promote warning findings to error severity
  --fail-fast           Stop after the first critical finding
  --pillar2             Run the Pillar Two safe-harbour estimator (default true)
  --max-issues int      Stop after this many findings (0 = unlimited)
  --help                Show this help message

Exit codes:
  0  Report has no error-or-worse findings
  1  Report has error-or-worse findings
  2  An error occurred (file not found, decode error, etc.)

Examples:
  cbcrvalidate validate filing.json
  cbcrvalidate validate --country LU --fiscal-year 2024 filing.json
  cbcrvalidate validate --format json --strict filing.json
`)
}
