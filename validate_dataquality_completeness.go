package cbcrval

import (
	"fmt"

	"github.com/oecdtools/cbcrval/refdata"
)

// CompletenessValidator checks that every field a complete filing
// should carry is actually present: summary fields, entity names, the
// reporting entity's presence among the constituent entities, and
// non-trivial additional-info narratives. Grounded on the teacher's
// check_vat_export.go presence-test style.
type CompletenessValidator struct{}

func (CompletenessValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "dataquality_completeness",
		Name:        "Completeness",
		Description: "Checks that expected fields are present.",
		Category:    refdata.CategoryDataQuality,
		Order:       300,
		Enabled:     true,
	}
}

func (CompletenessValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	for i, cr := range ctx.Report.Message.CbcBody.CbcReports {
		s := cr.Summary
		for _, f := range requiredSummaryFields(&s) {
			if IsBlank(f.value.Currency) {
				findings = append(findings, NewFinding("ENC-001").
					Message(fmt.Sprintf("Required summary field %s is missing a reported amount", f.name)).
					XPath(XPathSummaryField(i, f.name)).
					FieldName(f.name).
					Build())
			}
		}

		if s.UnrelatedRevenues == nil && s.RelatedRevenues != nil {
			findings = append(findings, NewFinding("ENC-002").
				Severity(refdata.SeverityWarning).
				Message("RelatedRevenues is present but UnrelatedRevenues is missing").
				XPath(XPathSummary(i)).
				Build())
		} else if s.RelatedRevenues == nil && s.UnrelatedRevenues != nil {
			findings = append(findings, NewFinding("ENC-002").
				Severity(refdata.SeverityWarning).
				Message("UnrelatedRevenues is present but RelatedRevenues is missing").
				XPath(XPathSummary(i)).
				Build())
		}

		for ei, ce := range cr.ConstEntities {
			if len(ce.Names) == 0 || IsBlank(ce.Names[0]) {
				findings = append(findings, NewFinding("ENC-003").
					Severity(refdata.SeverityWarning).
					Message("Constituent entity has no name").
					XPath(XPathConstEntity(i, ei) + "/Name").
					Build())
			}
		}
	}

	findings = append(findings, checkReportingEntityPresence(ctx)...)
	findings = append(findings, checkAdditionalInfoNarratives(ctx)...)

	return findings
}

// checkReportingEntityPresence looks the reporting entity up among the
// constituent entities by TIN, falling back to normalized name, per
// spec §4.4.8's "reporting entity matches some constituent entity"
// completeness check.
func checkReportingEntityPresence(ctx *AnalysisContext) []Finding {
	re := ctx.Report.Message.CbcBody.ReportingEntity

	var matches []EntityRef
	for _, tin := range re.TINs {
		matches = append(matches, ctx.EntitiesByTIN(tin.Value)...)
	}
	if len(matches) == 0 && len(re.Names) > 0 {
		matches = ctx.EntitiesByNameSubstring(re.Names[0])
	}

	if len(matches) == 0 {
		return []Finding{
			NewFinding("ENC-004").
				Severity(refdata.SeverityWarning).
				Message("Reporting entity was not found among any jurisdiction's constituent entities by TIN or name").
				XPath(XPathReportingEntity()).
				Build(),
		}
	}

	var findings []Finding
	for _, m := range matches {
		if m.Jurisdiction != ctx.Options.Country {
			findings = append(findings, NewFinding("ENC-005").
				Severity(refdata.SeverityInfo).
				Message(fmt.Sprintf("Reporting entity matched a constituent entity in %s, outside the primary jurisdiction %s", m.Jurisdiction, ctx.Options.Country)).
				XPath(XPathConstEntity(m.ReportIndex, m.EntityIndex)).
				Build())
		}
	}
	return findings
}

// namedMoney pairs a required Summary field's XML element name with its
// value, for the missing-field sweep in Validate.
type namedMoney struct {
	name  string
	value Money
}

// requiredSummaryFields lists the seven Table 1 Money fields the OECD
// schema requires on every CbcReport, keyed by element name for xpath
// and message construction. An empty Currency is the "absent" signal:
// a genuinely reported zero amount still carries its currency code.
func requiredSummaryFields(s *Summary) []namedMoney {
	return []namedMoney{
		{"TotalRevenues", s.TotalRevenues},
		{"ProfitOrLoss", s.ProfitOrLoss},
		{"TaxPaid", s.TaxPaid},
		{"TaxAccrued", s.TaxAccrued},
		{"Capital", s.Capital},
		{"AccumulatedEarnings", s.AccumulatedEarnings},
		{"TangibleAssets", s.TangibleAssets},
	}
}

func checkAdditionalInfoNarratives(ctx *AnalysisContext) []Finding {
	var findings []Finding
	for k, ai := range ctx.Report.Message.CbcBody.AdditionalInfo {
		xp := XPathAdditionalInfo(k) + "/OtherInfo"
		if IsBlank(ai.OtherInfo) {
			findings = append(findings, NewFinding("ENC-006").
				Severity(refdata.SeverityWarning).
				Message("AdditionalInfo block is present but its OtherInfo text is empty").
				XPath(xp).
				Build())
			continue
		}
		if len(ai.OtherInfo) < 10 {
			findings = append(findings, NewFinding("ENC-006").
				Severity(refdata.SeverityInfo).
				Message("AdditionalInfo text is shorter than 10 characters and unlikely to be a meaningful explanation").
				XPath(xp).
				Actual(ai.OtherInfo).
				Build())
		}
	}
	return findings
}
