package cbcrval

import (
	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

// CrossFieldValidator runs reasonableness heuristics that compare two
// or more fields of the same jurisdiction against each other: revenue
// vs. employees, business activity vs. tangible assets, and the
// dividend-exclusion reminder for holding/finance activities. Grounded
// on the teacher's check_vat_intracommunity.go cross-field sanity
// checks.
type CrossFieldValidator struct{}

func (CrossFieldValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "dataquality_crossfield",
		Name:        "CrossField",
		Description: "Runs cross-field reasonableness heuristics per jurisdiction.",
		Category:    refdata.CategoryDataQuality,
		Order:       320,
		Enabled:     true,
	}
}

func (CrossFieldValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	for ri, cr := range ctx.Report.Message.CbcBody.CbcReports {
		findings = append(findings, checkRevenueEmployeePlausibility(ri, cr)...)
		findings = append(findings, checkActivityAssetPlausibility(ri, cr, ctx.Options.DividendExclusionRatio)...)
	}

	return findings
}

func checkRevenueEmployeePlausibility(ri int, cr CbcReport) []Finding {
	var findings []Finding
	s := cr.Summary
	if s.TotalRevenues.Value.IsPositive() && s.NumberOfEmployees.IsZero() && !s.TangibleAssets.Value.IsZero() {
		findings = append(findings, NewFinding("XFV-001").
			Severity(refdata.SeverityInfo).
			Message("Jurisdiction reports revenue and tangible assets but zero employees").
			XPath(XPathSummary(ri)).
			Build())
	}
	return findings
}

func checkActivityAssetPlausibility(ri int, cr CbcReport, dividendRatio decimal.Decimal) []Finding {
	var findings []Finding
	s := cr.Summary
	tenMillion := decimal.New(10, 6)

	hasHolding, hasManufacturing, hasFinance, assetIntensive := false, false, false, false
	for _, ce := range cr.ConstEntities {
		for _, a := range ce.BusinessActivities {
			switch {
			case a.IsHoldingOnly():
				hasHolding = true
				hasFinance = true
			case a == ActivityManufacturingOrProduction:
				hasManufacturing = true
			case a.IsFinanceRelated():
				hasFinance = true
			case a == ActivityPurchasingOrProcurement || a == ActivityManufacturingOrProduction:
				assetIntensive = true
			}
		}
	}

	if hasHolding && s.TangibleAssets.Value.GreaterThan(tenMillion) {
		findings = append(findings, NewFinding("XFV-002").
			Severity(refdata.SeverityInfo).
			Message("Holding-only activity is reported together with more than 10,000,000 in tangible assets").
			XPath(XPathSummaryField(ri, "TangibleAssets")).
			Build())
	}

	if hasManufacturing {
		if s.TangibleAssets.Value.IsZero() {
			findings = append(findings, NewFinding("XFV-003").
				Severity(refdata.SeverityInfo).
				Message("Manufacturing activity (CBC504) is reported with zero tangible assets").
				XPath(XPathSummaryField(ri, "TangibleAssets")).
				Build())
		} else if s.TotalRevenues.Value.IsPositive() {
			ratio := s.TotalRevenues.Value.Div(s.TangibleAssets.Value)
			if ratio.GreaterThan(decimal.NewFromInt(50)) {
				findings = append(findings, NewFinding("XFV-003").
					Severity(refdata.SeverityInfo).
					Message("Manufacturing activity reports an unusually high revenue-to-tangible-asset ratio").
					XPath(XPathSummaryField(ri, "TangibleAssets")).
					Detail("revenueToAssetRatio", ratio.String()).
					Build())
			}
		}
	}

	if assetIntensive && s.TangibleAssets.Value.IsZero() {
		findings = append(findings, NewFinding("XFV-004").
			Severity(refdata.SeverityInfo).
			Message("An asset-intensive business activity is reported with zero tangible assets").
			XPath(XPathSummaryField(ri, "TangibleAssets")).
			Build())
	}

	if hasFinance && s.RelatedRevenues != nil && s.ProfitOrLoss.Value.IsPositive() {
		threshold := s.ProfitOrLoss.Value.Mul(dividendRatio)
		if s.RelatedRevenues.Value.GreaterThan(threshold) {
			findings = append(findings, NewFinding("XFV-005").
				Severity(refdata.SeverityInfo).
				Message("Holding/finance activity reports related-party revenue well above profit; confirm dividend income is excluded per OECD May-2024 guidance").
				XPath(XPathSummaryField(ri, "RelatedRevenues")).
				Detail("dividendExclusionRatio", dividendRatio.String()).
				Build())
		}
	}

	return findings
}
