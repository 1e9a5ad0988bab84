package cbcrval

import (
	"fmt"
	"time"

	"github.com/oecdtools/cbcrval/refdata"
)

// ConsistencyValidator checks whole-report consistency properties that
// span more than one CbcReport: a single reporting currency, entity
// accounting-period ordering and plausible length, and a shared leading
// country-code prefix between MessageRefId and the reporting entity's
// DocRefId; the year portion of the two ids is not compared. Grounded on
// the teacher's check_vat_notsubject.go cross-field consistency style.
//
// Open Question (b): this validator's XFV-006 currency check overlaps
// SummaryValidator's SUM-007; both are kept and the engine's
// (ruleId, xpath, message) dedup removes any exact duplicates.
type ConsistencyValidator struct{}

func (ConsistencyValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "dataquality_consistency",
		Name:        "Consistency",
		Description: "Checks whole-report consistency across jurisdictions.",
		Category:    refdata.CategoryDataQuality,
		Order:       310,
		Enabled:     true,
	}
}

func (ConsistencyValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	findings = append(findings, checkReportWideCurrency(ctx)...)
	findings = append(findings, checkAcctPeriods(ctx)...)
	findings = append(findings, checkRefIdPrefixAgreement(ctx)...)

	return findings
}

func checkReportWideCurrency(ctx *AnalysisContext) []Finding {
	currencies := map[string]bool{}
	anyMissing := false
	for _, jt := range ctx.JurisdictionRefs {
		if jt.Currency == "" {
			anyMissing = true
			continue
		}
		currencies[jt.Currency] = true
	}

	switch {
	case len(currencies) > 1:
		return []Finding{
			NewFinding("XFV-006").
				Message("More than one currency code is used across the report's jurisdictions").
				Build(),
		}
	case len(currencies) == 1 && anyMissing:
		return []Finding{
			NewFinding("XFV-006").
				Severity(refdata.SeverityWarning).
				Message("Some jurisdictions report a currency code and others do not").
				Build(),
		}
	}
	return nil
}

func checkAcctPeriods(ctx *AnalysisContext) []Finding {
	var findings []Finding
	for _, it := range IterateEntities(ctx.Report) {
		ce := it.Entity
		if ce.AcctPeriodStart == "" || ce.AcctPeriodEnd == "" {
			continue
		}
		start, errS := time.Parse("2006-01-02", ce.AcctPeriodStart)
		end, errE := time.Parse("2006-01-02", ce.AcctPeriodEnd)
		if errS != nil || errE != nil {
			continue
		}
		xp := XPathConstEntity(it.ReportIndex, it.EntityIndex)
		if !start.Before(end) {
			findings = append(findings, NewFinding("XFV-007").
				Message("AcctPeriodStart is not before AcctPeriodEnd").
				XPath(xp).
				Actual(fmt.Sprintf("%s..%s", ce.AcctPeriodStart, ce.AcctPeriodEnd)).
				Build())
			continue
		}
		days := end.Sub(start).Hours() / 24
		switch {
		case days > 400:
			findings = append(findings, NewFinding("XFV-008").
				Severity(refdata.SeverityWarning).
				Message(fmt.Sprintf("Accounting period is %.0f days, longer than the plausible [300, 400] range", days)).
				XPath(xp).
				Build())
		case days < 300:
			findings = append(findings, NewFinding("XFV-008").
				Severity(refdata.SeverityInfo).
				Message(fmt.Sprintf("Accounting period is %.0f days, shorter than the plausible [300, 400] range", days)).
				XPath(xp).
				Build())
		}
	}
	return findings
}

func checkRefIdPrefixAgreement(ctx *AnalysisContext) []Finding {
	ms := ctx.Report.Message.MessageSpec
	re := ctx.Report.Message.CbcBody.ReportingEntity

	if len(ms.MessageRefId) < 2 || len(re.DocSpec.DocRefId) < 2 {
		return nil
	}
	if ms.MessageRefId[:2] != re.DocSpec.DocRefId[:2] {
		return []Finding{
			NewFinding("XFV-009").
				Severity(refdata.SeverityWarning).
				Message("MessageRefId and the reporting entity's DocRefId do not share the same leading country-code prefix").
				XPath(XPathReportingEntityDocSpec() + "/DocRefId").
				Actual(re.DocSpec.DocRefId).
				Expected(ms.MessageRefId[:2] + "...").
				Build(),
		}
	}
	return nil
}
