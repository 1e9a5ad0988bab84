package cbcrval

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

// monetaryBound is the absolute value Summary monetary fields must stay
// within; values outside this are almost certainly a unit or encoding
// error rather than a real amount.
var monetaryBound = decimal.New(1, 15) // 10^15

// globalRevenueThreshold is the CbCR consolidated-revenue filing
// threshold (EUR 750 million equivalent).
var globalRevenueThreshold = decimal.New(750, 6)

// SummaryValidator checks each jurisdiction's Table 1 arithmetic:
// revenue decomposition, employee counts, monetary bounds and sign
// constraints, currency consistency, and tax/employee reasonableness
// heuristics, plus cross-jurisdiction global totals. Grounded on the
// teacher check.go's BR-CO-10..16 arithmetic-tolerance checks,
// generalized from a sum-of-lines law to a sum-of-two-parts law.
type SummaryValidator struct{}

func (SummaryValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "summary",
		Name:        "Summary",
		Description: "Validates Table 1 summary arithmetic and reasonableness.",
		Category:    refdata.CategoryBusiness,
		Order:       130,
		Enabled:     true,
	}
}

func (v SummaryValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	for i, cr := range ctx.Report.Message.CbcBody.CbcReports {
		findings = append(findings, v.checkOne(i, cr.Summary)...)
	}

	findings = append(findings, v.checkGlobal(ctx)...)
	return findings
}

func (SummaryValidator) checkOne(i int, s Summary) []Finding {
	var findings []Finding
	xp := XPathSummary(i)

	// Revenue decomposition, §4.4.4 item 1 and Testable Property "revenue sum law".
	switch {
	case s.UnrelatedRevenues != nil && s.RelatedRevenues != nil:
		computed := s.UnrelatedRevenues.Value.Add(s.RelatedRevenues.Value)
		diff := s.TotalRevenues.Value.Sub(computed).Abs()
		denom := decimal.Max(s.TotalRevenues.Value.Abs(), computed.Abs(), decimal.NewFromInt(1))
		if diff.GreaterThan(denom.Mul(RevenueSumTolerance)) {
			findings = append(findings, NewFinding("SUM-002").
				Message(fmt.Sprintf("TotalRevenues %s does not equal UnrelatedRevenues+RelatedRevenues %s", s.TotalRevenues.Value, computed)).
				XPath(XPathSummaryField(i, "TotalRevenues")).
				Actual(s.TotalRevenues.Value.String()).
				Expected(computed.String()).
				Detail("difference", diff.String()).
				Build())
		}
	case !s.TotalRevenues.Value.IsZero():
		findings = append(findings, NewFinding("SUM-001").
			Severity(refdata.SeverityWarning).
			Message("TotalRevenues is non-zero but UnrelatedRevenues and RelatedRevenues are not both present").
			XPath(xp).
			Build())
	}

	if !isIntegerValued(s.NumberOfEmployees) || s.NumberOfEmployees.IsNegative() {
		findings = append(findings, NewFinding("SUM-003").
			Message(fmt.Sprintf("NumberOfEmployees %s must be a non-negative integer", s.NumberOfEmployees)).
			XPath(XPathSummaryField(i, "NumberOfEmployees")).
			Actual(s.NumberOfEmployees.String()).
			Build())
	}

	type field struct {
		name        string
		money       Money
		nonNegative bool
	}
	fields := []field{
		{"TotalRevenues", s.TotalRevenues, true},
		{"ProfitOrLoss", s.ProfitOrLoss, false},
		{"TaxPaid", s.TaxPaid, false},
		{"TaxAccrued", s.TaxAccrued, false},
		{"Capital", s.Capital, false},
		{"AccumulatedEarnings", s.AccumulatedEarnings, false},
		{"TangibleAssets", s.TangibleAssets, true},
	}
	currencies := map[string]bool{}
	if s.TotalRevenues.Currency != "" {
		currencies[s.TotalRevenues.Currency] = true
	}
	if s.UnrelatedRevenues != nil && s.UnrelatedRevenues.Currency != "" {
		currencies[s.UnrelatedRevenues.Currency] = true
	}
	if s.RelatedRevenues != nil && s.RelatedRevenues.Currency != "" {
		currencies[s.RelatedRevenues.Currency] = true
	}

	for _, f := range fields {
		if f.money.Currency != "" {
			currencies[f.money.Currency] = true
		}
		findings = append(findings, checkMonetaryField(f.name, f.money, XPathSummaryField(i, f.name), f.nonNegative)...)
	}
	if len(currencies) > 1 {
		findings = append(findings, NewFinding("SUM-007").
			Severity(refdata.SeverityWarning).
			Message("Summary monetary fields report more than one currency").
			XPath(xp).
			Build())
	}

	findings = append(findings, v.checkTaxReasonableness(i, s)...)
	findings = append(findings, v.checkRevenueEmployeeConsistency(i, s)...)

	allZero := s.TotalRevenues.Value.IsZero() && s.ProfitOrLoss.Value.IsZero() &&
		s.TaxPaid.Value.IsZero() && s.TaxAccrued.Value.IsZero() &&
		s.Capital.Value.IsZero() && s.AccumulatedEarnings.Value.IsZero() &&
		s.TangibleAssets.Value.IsZero() && s.NumberOfEmployees.IsZero()
	if allZero {
		findings = append(findings, NewFinding("SUM-015").
			Severity(refdata.SeverityInfo).
			Message("All summary fields are zero; confirm CBC512 (Dormant) was reported if this jurisdiction has no activity").
			XPath(xp).
			Build())
	}

	return findings
}

func (SummaryValidator) checkTaxReasonableness(i int, s Summary) []Finding {
	var findings []Finding
	xp := XPathSummary(i)
	profit := s.ProfitOrLoss.Value

	if profit.IsPositive() {
		maxTax := decimal.Max(s.TaxPaid.Value, s.TaxAccrued.Value)
		if ratio := maxTax.Div(profit); ratio.GreaterThan(decimal.NewFromFloat(0.5)) {
			findings = append(findings, NewFinding("SUM-009").
				Severity(refdata.SeverityInfo).
				Message("Reported tax is a high share of profit").
				XPath(xp).
				Detail("ratio", ratio.String()).
				Build())
		}
		if s.TaxPaid.Value.IsZero() && s.TaxAccrued.Value.IsZero() {
			findings = append(findings, NewFinding("SUM-010").
				Severity(refdata.SeverityInfo).
				Message("Zero tax paid and accrued despite positive profit").
				XPath(xp).
				Build())
		}
		etr := s.TaxAccrued.Value.Div(profit)
		if etr.LessThan(decimal.NewFromFloat(0.001)) {
			findings = append(findings, NewFinding("SUM-011").
				Severity(refdata.SeverityInfo).
				Message("Simplified ETR is below 0.1% despite positive profit").
				XPath(xp).
				Detail("simplifiedEtr", etr.String()).
				Build())
		}
	}

	if s.TaxPaid.Value.IsPositive() && s.TaxAccrued.Value.IsPositive() {
		diff := s.TaxPaid.Value.Sub(s.TaxAccrued.Value).Abs()
		maxTax := decimal.Max(s.TaxPaid.Value, s.TaxAccrued.Value)
		if diff.Div(maxTax).GreaterThan(decimal.NewFromFloat(0.5)) {
			findings = append(findings, NewFinding("SUM-012").
				Severity(refdata.SeverityInfo).
				Message("TaxPaid and TaxAccrued diverge by more than 50%").
				XPath(xp).
				Detail("taxPaid", s.TaxPaid.Value.String()).
				Detail("taxAccrued", s.TaxAccrued.Value.String()).
				Build())
		}
	}

	return findings
}

func (SummaryValidator) checkRevenueEmployeeConsistency(i int, s Summary) []Finding {
	var findings []Finding
	xp := XPathSummary(i)

	if s.TotalRevenues.Value.IsZero() && s.NumberOfEmployees.IsPositive() {
		findings = append(findings, NewFinding("SUM-013").
			Severity(refdata.SeverityWarning).
			Message("Employees are reported but TotalRevenues is zero").
			XPath(xp).
			Build())
	}
	tenMillion := decimal.New(10, 6)
	if s.TotalRevenues.Value.GreaterThan(tenMillion) && s.NumberOfEmployees.IsZero() {
		findings = append(findings, NewFinding("SUM-014").
			Severity(refdata.SeverityWarning).
			Message("TotalRevenues exceeds 10,000,000 but zero employees are reported").
			XPath(xp).
			Build())
	}
	return findings
}

func (SummaryValidator) checkGlobal(ctx *AnalysisContext) []Finding {
	var findings []Finding
	totals := ctx.GlobalTotals()

	if totals.TotalRevenues.LessThan(globalRevenueThreshold) {
		findings = append(findings, NewFinding("SUM-016").
			Severity(refdata.SeverityInfo).
			Message("Global total revenues are below the EUR 750 million CbCR filing threshold").
			Detail("globalTotalRevenues", totals.TotalRevenues.String()).
			Build())
	}

	jurisdictions := ctx.Jurisdictions()
	if len(jurisdictions) > 3 && totals.ProfitOrLoss.IsPositive() {
		for _, jt := range jurisdictions {
			if jt.ProfitOrLoss.IsZero() {
				continue
			}
			share := jt.ProfitOrLoss.Div(totals.ProfitOrLoss)
			if share.GreaterThan(decimal.NewFromFloat(0.9)) {
				findings = append(findings, NewFinding("SUM-017").
					Severity(refdata.SeverityInfo).
					Message(fmt.Sprintf("Jurisdiction %s holds more than 90%% of global profit across %d jurisdictions", jt.Code, len(jurisdictions))).
					XPath(XPathCbcReportField(jt.Index, "Summary/ProfitOrLoss")).
					Detail("share", share.String()).
					Build())
			}
		}
	}

	return findings
}

// checkMonetaryField applies the bounds, sign, and precision checks
// shared by every Summary monetary field.
func checkMonetaryField(name string, m Money, xpath string, mustBeNonNegative bool) []Finding {
	var findings []Finding

	if m.Value.Abs().GreaterThan(monetaryBound) {
		findings = append(findings, NewFinding("SUM-004").
			Message(fmt.Sprintf("%s magnitude exceeds the 10^15 plausibility bound", name)).
			XPath(xpath).
			Actual(m.Value.String()).
			Build())
		return findings
	}

	if mustBeNonNegative && m.Value.IsNegative() {
		findings = append(findings, NewFinding("SUM-005").
			Message(fmt.Sprintf("%s must not be negative", name)).
			XPath(xpath).
			Actual(m.Value.String()).
			Build())
	} else if !mustBeNonNegative && m.Value.IsNegative() {
		findings = append(findings, NewFinding("SUM-006").
			Severity(refdata.SeverityInfo).
			Message(fmt.Sprintf("%s is negative", name)).
			XPath(xpath).
			Actual(m.Value.String()).
			Build())
	}

	if places := -m.Value.Exponent(); places > 2 {
		findings = append(findings, NewFinding("SUM-008").
			Severity(refdata.SeverityInfo).
			Message(fmt.Sprintf("%s has %d decimal places, more precision than monetary amounts typically carry", name, places)).
			XPath(xpath).
			Build())
	}

	return findings
}

func isIntegerValued(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}
