package cbcrval

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

// Pillar2Validator estimates Pillar Two (GloBE) transitional
// safe-harbour eligibility from CbCR data alone: three independent
// tests (de-minimis, Simplified ETR, routine-profits/SBIE) per
// jurisdiction, passing any one qualifies; a separate approximate
// top-up-tax estimate and risk rating; and a jurisdiction charging-
// mechanism note from the qualified-rules reference table. All output
// is explicitly an estimate, never a filed GloBE computation, per the
// module's non-goals.
//
// Grounded on the teacher's three independent VAT-category sub-
// validators (check_vat_standard.go, check_vat_zero.go,
// check_vat_reverse.go), each an isolated "passes if" predicate over
// one invoice, generalized here to three isolated safe-harbour
// predicates over one jurisdiction.
type Pillar2Validator struct{}

func (Pillar2Validator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "pillar2",
		Name:        "Pillar2",
		Description: "Estimates Pillar Two transitional safe-harbour eligibility and top-up-tax risk.",
		Category:    refdata.CategoryPillar2,
		Order:       400,
		Enabled:     true,
	}
}

func (v Pillar2Validator) Validate(ctx *AnalysisContext) []Finding {
	fy := ctx.Options.FiscalYear
	if fy < 2024 || fy > 2026 {
		return []Finding{
			NewFinding("P2-001").
				Severity(refdata.SeverityWarning).
				Message(fmt.Sprintf("Fiscal year %d is outside the 2024-2026 transitional safe-harbour window", fy)).
				Build(),
		}
	}

	var findings []Finding
	for _, jt := range ctx.Jurisdictions() {
		findings = append(findings, v.evaluateJurisdiction(jt, fy)...)
	}
	return findings
}

// safeHarbourTest names one of the three independent tests and whether
// it passed, for the detail map attached to P2-SH-PASS.
type safeHarbourTest struct {
	name   string
	passed bool
}

func (v Pillar2Validator) evaluateJurisdiction(jt *JurisdictionTotals, fy int) []Finding {
	xp := XPathCbcReportField(jt.Index, "Summary")

	tests := []safeHarbourTest{
		{"de_minimis", deMinimisPasses(jt)},
		{"simplified_etr", simplifiedETRPasses(jt, fy)},
		{"routine_profits", routineProfitsPasses(jt, fy)},
	}

	var findings []Finding
	anyPass := false
	for _, t := range tests {
		if t.passed {
			anyPass = true
		}
	}

	if anyPass {
		passedNames := make([]string, 0, len(tests))
		for _, t := range tests {
			if t.passed {
				passedNames = append(passedNames, t.name)
			}
		}
		findings = append(findings, NewFinding("P2-SH-PASS").
			Severity(refdata.SeverityInfo).
			Message(fmt.Sprintf("Jurisdiction %s qualifies for transitional CbCR safe harbour", jt.Code)).
			XPath(xp).
			Detail("jurisdiction", jt.Code).
			Detail("qualifyingTests", fmt.Sprintf("%v", passedNames)).
			Build())
	} else {
		findings = append(findings, NewFinding("P2-SH-FAIL").
			Severity(refdata.SeverityWarning).
			Message(fmt.Sprintf("Jurisdiction %s does not qualify for any transitional safe-harbour test", jt.Code)).
			XPath(xp).
			Detail("jurisdiction", jt.Code).
			Build())
	}

	findings = append(findings, v.estimateTopUpTax(jt, fy, anyPass)...)
	findings = append(findings, v.analyzeChargingMechanism(jt)...)

	return findings
}

// deMinimisPasses implements the de-minimis safe-harbour test:
// totalRevenues < 10M and profitOrLoss < 1M.
func deMinimisPasses(jt *JurisdictionTotals) bool {
	return jt.TotalRevenues.LessThan(decimal.New(10, 6)) && jt.ProfitOrLoss.LessThan(decimal.New(1, 6))
}

// simplifiedETRPasses implements the Simplified ETR safe-harbour test:
// defined only when profit is positive; taxAccrued/profitOrLoss must
// meet or exceed the fiscal year's threshold.
func simplifiedETRPasses(jt *JurisdictionTotals, fy int) bool {
	if !jt.ProfitOrLoss.IsPositive() {
		return false
	}
	etr := jt.TaxAccrued.Div(jt.ProfitOrLoss)
	return etr.GreaterThanOrEqual(refdata.SimplifiedETRThreshold(fy))
}

// routineProfitsPasses implements the Substance-Based Income Exclusion
// (SBIE) safe-harbour test: profit must not exceed the computed
// routine-profit carve-out.
func routineProfitsPasses(jt *JurisdictionTotals, fy int) bool {
	payrollRate, assetRate := refdata.SBIERates(fy)
	perEmployeeCost := refdata.AveragePayroll(jt.Code)
	eligiblePayroll := jt.Employees.Mul(perEmployeeCost)
	sbie := eligiblePayroll.Mul(payrollRate).Add(jt.TangibleAssets.Mul(assetRate))
	return jt.ProfitOrLoss.LessThanOrEqual(sbie)
}

// estimateTopUpTax emits a risk-rated finding for a jurisdiction with
// positive profit that passed no safe-harbour test. Below the GloBE
// minimum ETR it computes the approximate top-up tax and rates the risk
// high (profit above 5,000,000) or medium; from the minimum up to the
// fiscal year's safe-harbour threshold plus 0.02 it rates the risk low
// with a zero estimate; above that band it emits nothing.
func (Pillar2Validator) estimateTopUpTax(jt *JurisdictionTotals, fy int, safeHarbourPassed bool) []Finding {
	if !jt.ProfitOrLoss.IsPositive() {
		return nil
	}
	etr := jt.TaxAccrued.Div(jt.ProfitOrLoss)
	lowRiskBand := refdata.SimplifiedETRThreshold(fy).Add(decimal.NewFromFloat(0.02))
	if etr.GreaterThanOrEqual(lowRiskBand) {
		return nil
	}
	if safeHarbourPassed {
		return nil
	}

	belowMinimum := etr.LessThan(refdata.MinimumETR)
	estimatedTopUp := decimal.Zero
	if belowMinimum {
		estimatedTopUp = jt.ProfitOrLoss.Mul(refdata.MinimumETR.Sub(etr))
	}
	xp := XPathCbcReportField(jt.Index, "Summary")

	highRiskThreshold := decimal.New(5, 6)

	switch {
	case belowMinimum && jt.ProfitOrLoss.GreaterThan(highRiskThreshold):
		return []Finding{
			NewFinding("P2-JUR-010").
				Severity(refdata.SeverityWarning).
				Message(fmt.Sprintf("Jurisdiction %s shows elevated estimated top-up tax risk", jt.Code)).
				XPath(xp).
				Detail("jurisdiction", jt.Code).
				Detail("simplifiedEtr", etr.String()).
				Detail("estimatedTopUp", estimatedTopUp.StringFixed(2)).
				Detail("risk", "high").
				Build(),
		}
	case !belowMinimum:
		return []Finding{
			NewFinding("P2-JUR-011").
				Severity(refdata.SeverityInfo).
				Message(fmt.Sprintf("Jurisdiction %s shows low estimated top-up tax risk", jt.Code)).
				XPath(xp).
				Detail("jurisdiction", jt.Code).
				Detail("simplifiedEtr", etr.String()).
				Detail("estimatedTopUp", estimatedTopUp.StringFixed(2)).
				Detail("risk", "low").
				Build(),
		}
	default:
		return []Finding{
			NewFinding("P2-JUR-010").
				Severity(refdata.SeverityWarning).
				Message(fmt.Sprintf("Jurisdiction %s shows estimated top-up tax exposure", jt.Code)).
				XPath(xp).
				Detail("jurisdiction", jt.Code).
				Detail("simplifiedEtr", etr.String()).
				Detail("estimatedTopUp", estimatedTopUp.StringFixed(2)).
				Detail("risk", "medium").
				Build(),
		}
	}
}

// analyzeChargingMechanism consults the Pillar Two qualified-rules
// table to name which charging mechanism applies to jt's jurisdiction,
// in priority order QDMTT > IIR > UTPR.
func (Pillar2Validator) analyzeChargingMechanism(jt *JurisdictionTotals) []Finding {
	jur, ok := refdata.Pillar2JurisdictionByCode(jt.Code)
	if !ok {
		return nil
	}
	mechanism := jur.ChargingMechanism()
	if mechanism == "none" {
		return nil
	}
	return []Finding{
		NewFinding("P2-JUR-020").
			Severity(refdata.SeverityInfo).
			Message(fmt.Sprintf("Jurisdiction %s's applicable Pillar Two charging mechanism is %s", jt.Code, mechanism)).
			XPath(XPathCbcReportField(jt.Index, "Summary")).
			Detail("jurisdiction", jt.Code).
			Detail("mechanism", mechanism).
			Build(),
	}
}
