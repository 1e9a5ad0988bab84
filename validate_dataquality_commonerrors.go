package cbcrval

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

// CommonErrorsValidator implements the subset of the OECD's "28 common
// errors in CbC reporting" guidance not already covered by a more
// specific validator: TIN misuse, duplicate TINs across distinct
// entities, jurisdiction/entity-list mismatches, amount-precision and
// unit-abbreviation smells, negative revenue, and filing-date sanity.
// Grounded on the teacher's check_vat_reverse.go/check_vat_zero.go
// heuristic-checklist style.
type CommonErrorsValidator struct{}

func (CommonErrorsValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "common_errors",
		Name:        "CommonErrors",
		Description: "Flags the OECD's commonly observed CbCR filing errors.",
		Category:    refdata.CategoryDataQuality,
		Order:       330,
		Enabled:     true,
	}
}

func (CommonErrorsValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	findings = append(findings, checkMissingAndMisusedTINs(ctx)...)
	findings = append(findings, checkDuplicateTINsAcrossEntities(ctx)...)
	findings = append(findings, checkJurisdictionEntityListAgreement(ctx)...)
	findings = append(findings, checkAmountSmells(ctx)...)
	findings = append(findings, checkFilingDateSanity(ctx)...)

	return findings
}

func checkMissingAndMisusedTINs(ctx *AnalysisContext) []Finding {
	var findings []Finding
	for _, it := range IterateEntities(ctx.Report) {
		xp := XPathConstEntity(it.ReportIndex, it.EntityIndex)
		if len(it.Entity.TINs) == 0 {
			findings = append(findings, NewFinding("CE-001").
				Severity(refdata.SeverityWarning).
				Message("Constituent entity has no TIN").
				XPath(xp + "/TIN").
				Build())
			continue
		}
		for _, t := range it.Entity.TINs {
			if strings.EqualFold(strings.TrimSpace(t.Value), "NOTIN") && IsBlank(it.Entity.OtherEntityInfo) {
				findings = append(findings, NewFinding("CE-002").
					Severity(refdata.SeverityInfo).
					Message("NOTIN is used without an OtherEntityInfo explanation").
					XPath(xp + "/TIN").
					Build())
			}
		}
	}
	return findings
}

func checkDuplicateTINsAcrossEntities(ctx *AnalysisContext) []Finding {
	var findings []Finding
	seen := make(map[string][]EntityRef)
	for _, ref := range ctx.EntityRefs {
		for _, t := range ref.TINs {
			if t == "" {
				continue
			}
			seen[t] = append(seen[t], ref)
		}
	}
	for tin, refs := range seen {
		if len(refs) < 2 {
			continue
		}
		distinct := map[string]bool{}
		for _, r := range refs {
			distinct[r.NormalizedName] = true
		}
		if len(distinct) > 1 {
			findings = append(findings, NewFinding("CE-003").
				Message(fmt.Sprintf("TIN %q is reused across %d distinct entities", tin, len(distinct))).
				XPath(XPathConstEntity(refs[0].ReportIndex, refs[0].EntityIndex)).
				Build())
		}
	}
	return findings
}

func checkJurisdictionEntityListAgreement(ctx *AnalysisContext) []Finding {
	var findings []Finding
	for ri, cr := range ctx.Report.Message.CbcBody.CbcReports {
		if len(cr.ConstEntities) == 0 {
			findings = append(findings, NewFinding("CE-004").
				Severity(refdata.SeverityWarning).
				Message("Jurisdiction appears in Table 1 Summary but has no constituent entities listed").
				XPath(XPathCbcReportField(ri, "ConstEntities")).
				Build())
		}
	}
	return findings
}

func checkAmountSmells(ctx *AnalysisContext) []Finding {
	var findings []Finding
	for ri, cr := range ctx.Report.Message.CbcBody.CbcReports {
		s := cr.Summary
		if s.TotalRevenues.Value.IsZero() {
			continue
		}
		if places := -s.TotalRevenues.Value.Exponent(); places > 2 {
			findings = append(findings, NewFinding("CE-006").
				Severity(refdata.SeverityInfo).
				Message("TotalRevenues carries implausible sub-cent precision").
				XPath(XPathSummaryField(ri, "TotalRevenues")).
				Build())
		}
		if s.TotalRevenues.Value.Abs().LessThan(decimal.NewFromInt(1000)) && s.NumberOfEmployees.GreaterThan(decimal.NewFromInt(50)) {
			findings = append(findings, NewFinding("CE-007").
				Severity(refdata.SeverityInfo).
				Message("TotalRevenues is implausibly small relative to employee count; check for unconverted thousands/millions").
				XPath(XPathSummaryField(ri, "TotalRevenues")).
				Build())
		}
		if s.TotalRevenues.Value.IsNegative() {
			findings = append(findings, NewFinding("CE-009").
				Message("TotalRevenues is negative").
				XPath(XPathSummaryField(ri, "TotalRevenues")).
				Build())
		}
	}
	return findings
}

func checkFilingDateSanity(ctx *AnalysisContext) []Finding {
	ms := ctx.Report.Message.MessageSpec
	if ms.Timestamp == "" {
		return nil
	}
	ts, err := parseAnyTimestamp(ms.Timestamp)
	if err != nil {
		return nil
	}
	period, err := time.Parse("2006-01-02", ms.ReportingPeriod)
	if err != nil {
		return nil
	}

	var findings []Finding
	if ts.Sub(period).Hours() < 24*31 {
		findings = append(findings, NewFinding("CE-011").
			Severity(refdata.SeverityInfo).
			Message("Filing timestamp is suspiciously close to the end of the reporting period").
			XPath(XPathMessageSpecField("Timestamp")).
			Build())
	}
	return findings
}

func parseAnyTimestamp(s string) (time.Time, error) {
	for _, layout := range isoTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no matching timestamp layout for %q", s)
}
