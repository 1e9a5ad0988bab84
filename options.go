package cbcrval

import "github.com/shopspring/decimal"

// RevenueSumTolerance is the fraction of the larger magnitude that
// totalRevenues may diverge from unrelatedRevenues+relatedRevenues before
// SUM-002 fires. Named per Open Question (c): exposed as a constant
// rather than an inline literal.
var RevenueSumTolerance = decimal.NewFromFloat(0.0001)

// Options configures one validation run. Zero value is not meaningful;
// use DefaultOptions and override as needed.
type Options struct {
	Country                string   // primary jurisdiction, default "LU"
	FiscalYear              int      // default: current year
	CheckPillar2            bool     // default true
	CheckGlobalDocRefIds    bool     // default true
	StrictMode              bool     // default false: promotes warning -> error
	FailFast                bool     // default false: stop at first critical
	MaxIssues               int      // default 0 (unlimited)
	TrackTiming             bool     // default false
	Jurisdictions           []string // filter, default empty = all
	MinSeverity             string   // default "info"
	Categories              []string // filter, default empty = all
	SkipRules               []string // default empty
	IncludePassedRules      bool     // default false
	TestMode                bool     // default false
	MaxParallel             int      // bounded-parallel validator cap within a phase, 0 = sequential
	DividendExclusionRatio  decimal.Decimal // Open Question (d): configurable XFV-005 threshold, default 1.5
}

// DefaultOptions returns the configuration spec §6 names as defaults.
func DefaultOptions() Options {
	return Options{
		Country:                "LU",
		CheckPillar2:           true,
		CheckGlobalDocRefIds:   true,
		MinSeverity:            "info",
		DividendExclusionRatio: decimal.NewFromFloat(1.5),
	}
}
