package refdata

import "github.com/shopspring/decimal"

// Pillar2Jurisdiction describes which GloBE charging mechanisms a
// jurisdiction has implemented and from when, plus the average annual
// payroll cost used to estimate the Substance-Based Income Exclusion when
// an entity's own payroll figures are unavailable.
type Pillar2Jurisdiction struct {
	Code          string
	IIR           bool
	UTPR          bool
	QDMTT         bool
	EffectiveDate string // YYYY-MM-DD, empty if not yet implemented
	AvgPayroll    string // decimal string, parsed on demand
}

// Pillar2JurisdictionByCode looks up the qualified-rules table entry for a
// jurisdiction. The boolean result reports whether the jurisdiction is
// known; unknown jurisdictions are treated as having no mechanism in force.
func Pillar2JurisdictionByCode(code string) (Pillar2Jurisdiction, bool) {
	ensureLoaded()
	j, ok := pillar2Jurs[code]
	return j, ok
}

// ChargingMechanism names which GloBE mechanism applies to a jurisdiction,
// in priority order QDMTT > IIR > UTPR, matching the ordering OECD guidance
// gives for how overlapping charging rights are resolved.
func (j Pillar2Jurisdiction) ChargingMechanism() string {
	switch {
	case j.QDMTT:
		return "QDMTT"
	case j.IIR:
		return "IIR"
	case j.UTPR:
		return "UTPR"
	default:
		return "none"
	}
}

// defaultAvgPayroll is used for jurisdictions absent from the reference
// table, per spec §4.4.7 "fallback 40,000".
var defaultAvgPayroll = decimal.NewFromInt(40000)

// AveragePayroll returns the per-employee payroll-cost estimate for a
// jurisdiction, falling back to the OECD-suggested default when the
// jurisdiction is not in the reference table or its value is unparsable.
func AveragePayroll(jurisdictionCode string) decimal.Decimal {
	j, ok := Pillar2JurisdictionByCode(jurisdictionCode)
	if !ok {
		return defaultAvgPayroll
	}
	v, err := decimal.NewFromString(j.AvgPayroll)
	if err != nil {
		return defaultAvgPayroll
	}
	return v
}

// SimplifiedETRThreshold returns the minimum Simplified ETR that qualifies
// a jurisdiction for transitional safe harbour in a given fiscal year,
// per spec §4.4.7.
func SimplifiedETRThreshold(fiscalYear int) decimal.Decimal {
	switch fiscalYear {
	case 2024:
		return decimal.NewFromFloat(0.15)
	case 2025:
		return decimal.NewFromFloat(0.16)
	case 2026:
		return decimal.NewFromFloat(0.17)
	default:
		return decimal.NewFromFloat(0.15)
	}
}

// MinimumETR is the GloBE minimum effective tax rate used to estimate
// top-up tax, independent of the transitional safe-harbour threshold.
var MinimumETR = decimal.NewFromFloat(0.15)

// sbieRates holds the transitional payroll/tangible-asset carve-out
// percentages for a fiscal year, tapering per spec §4.4.7 from 10%/8% in
// 2024 down to 5%/5% from 2033 onward.
type sbieRates struct {
	Payroll decimal.Decimal
	Asset   decimal.Decimal
}

// SBIERates returns the transitional Substance-Based Income Exclusion
// payroll-rate and asset-rate for a fiscal year.
func SBIERates(fiscalYear int) (payrollRate, assetRate decimal.Decimal) {
	schedule := map[int]sbieRates{
		2024: {decimal.NewFromFloat(0.10), decimal.NewFromFloat(0.08)},
		2025: {decimal.NewFromFloat(0.096), decimal.NewFromFloat(0.076)},
		2026: {decimal.NewFromFloat(0.092), decimal.NewFromFloat(0.072)},
		2027: {decimal.NewFromFloat(0.088), decimal.NewFromFloat(0.068)},
		2028: {decimal.NewFromFloat(0.084), decimal.NewFromFloat(0.064)},
		2029: {decimal.NewFromFloat(0.080), decimal.NewFromFloat(0.060)},
		2030: {decimal.NewFromFloat(0.076), decimal.NewFromFloat(0.056)},
		2031: {decimal.NewFromFloat(0.072), decimal.NewFromFloat(0.052)},
		2032: {decimal.NewFromFloat(0.068), decimal.NewFromFloat(0.050)},
	}

	if r, ok := schedule[fiscalYear]; ok {
		return r.Payroll, r.Asset
	}
	if fiscalYear < 2024 {
		return schedule[2024].Payroll, schedule[2024].Asset
	}
	// 2033 onward: fully tapered to 5%/5%.
	return decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.05)
}
