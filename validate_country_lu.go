package cbcrval

import (
	"fmt"
	"regexp"
	"time"

	"github.com/oecdtools/cbcrval/refdata"
)

// luMatriculePattern is the Luxembourg Matricule National shape: 11-13
// numeric digits.
var luMatriculePattern = regexp.MustCompile(`^[0-9]{11,13}$`)

// luVATPattern flags values that look like a Luxembourg VAT number
// rather than a Matricule National, so TIN-format confusion can be
// called out specifically.
var luVATPattern = regexp.MustCompile(`^LU[0-9]{8}$`)

// LuxembourgCountryValidator runs Luxembourg-specific sub-checks when
// Options.Country == "LU": local TIN format, filing-deadline proximity,
// local preferences (currency, TIN issuer, language), and a Pillar Two
// applicability note. Grounded on the teacher's validate_german.go as
// the structural analogue of one jurisdiction's bespoke rule set.
type LuxembourgCountryValidator struct{}

func (LuxembourgCountryValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:                  "country_lu",
		Name:                "LuxembourgCountryRules",
		Description:         "Validates Luxembourg-specific CbCR filing rules.",
		Category:            refdata.CategoryCountry,
		Order:                200,
		ApplicableCountries: []string{"LU"},
		Enabled:             true,
	}
}

func (v LuxembourgCountryValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	findings = append(findings, v.checkTIN(ctx)...)
	findings = append(findings, v.checkDeadline(ctx)...)
	findings = append(findings, v.checkLocalRules(ctx)...)
	findings = append(findings, v.checkPillar2Applicability(ctx)...)

	return findings
}

func (LuxembourgCountryValidator) checkTIN(ctx *AnalysisContext) []Finding {
	var findings []Finding
	re := ctx.Report.Message.CbcBody.ReportingEntity

	for i, tin := range re.TINs {
		xp := fmt.Sprintf("%s/TIN[%d]", XPathReportingEntity(), i+1)
		if luVATPattern.MatchString(tin.Value) {
			findings = append(findings, NewFinding("LU-002").
				Severity(refdata.SeverityWarning).
				Message("TIN resembles a Luxembourg VAT number rather than a Matricule National").
				XPath(xp).
				Actual(tin.Value).
				Build())
			continue
		}
		if !luMatriculePattern.MatchString(tin.Value) {
			findings = append(findings, NewFinding("LU-001").
				Message("TIN is not a valid Luxembourg Matricule National (11-13 digits)").
				XPath(xp).
				Actual(tin.Value).
				Build())
		}
	}
	return findings
}

func (LuxembourgCountryValidator) checkDeadline(ctx *AnalysisContext) []Finding {
	var findings []Finding
	period := ctx.Report.Message.MessageSpec.ReportingPeriod
	fyEnd, err := time.Parse("2006-01-02", period)
	if err != nil {
		return nil
	}

	filingDeadline := fyEnd.AddDate(1, 0, 0)
	now := time.Now()
	remaining := filingDeadline.Sub(now)

	switch {
	case now.After(filingDeadline):
		findings = append(findings, NewFinding("LU-003").
			Message(fmt.Sprintf("The CbCR filing deadline (%s) has passed", filingDeadline.Format("2006-01-02"))).
			XPath(XPathMessageSpecField("ReportingPeriod")).
			Detail("filingDeadline", filingDeadline.Format("2006-01-02")).
			Build())
	case remaining <= 7*24*time.Hour:
		findings = append(findings, NewFinding("LU-004").
			Severity(refdata.SeverityWarning).
			Message("The CbCR filing deadline is within 7 days").
			XPath(XPathMessageSpecField("ReportingPeriod")).
			Detail("filingDeadline", filingDeadline.Format("2006-01-02")).
			Build())
	case remaining <= 30*24*time.Hour:
		findings = append(findings, NewFinding("LU-005").
			Severity(refdata.SeverityInfo).
			Message("The CbCR filing deadline is within 30 days").
			XPath(XPathMessageSpecField("ReportingPeriod")).
			Detail("filingDeadline", filingDeadline.Format("2006-01-02")).
			Build())
	}
	return findings
}

func (LuxembourgCountryValidator) checkLocalRules(ctx *AnalysisContext) []Finding {
	var findings []Finding
	ms := ctx.Report.Message.MessageSpec
	re := ctx.Report.Message.CbcBody.ReportingEntity

	luReport, hasLUReport := ctx.JurisdictionByCode("LU")
	if hasLUReport && luReport.Currency != "" && luReport.Currency != "EUR" {
		findings = append(findings, NewFinding("LU-006").
			Severity(refdata.SeverityInfo).
			Message("Luxembourg CbcReport does not use EUR as its reporting currency").
			XPath(XPathCbcReportField(luReport.Index, "Summary/TotalRevenues")).
			Actual(luReport.Currency).
			Build())
	}

	luIssued := false
	for _, tin := range re.TINs {
		if tin.IssuedBy == "LU" {
			luIssued = true
			break
		}
	}
	if !luIssued && len(re.TINs) > 0 {
		findings = append(findings, NewFinding("LU-007").
			Severity(refdata.SeverityInfo).
			Message("Reporting entity has no TIN issued by LU").
			XPath(XPathReportingEntity() + "/TIN").
			Build())
	}

	if ms.Language != "" && !IsAcceptedLanguageCode(ms.Language) {
		findings = append(findings, NewFinding("LU-008").
			Severity(refdata.SeverityWarning).
			Message(fmt.Sprintf("Language code %q is outside the accepted set (en, fr, de)", ms.Language)).
			XPath(XPathMessageSpecField("Language")).
			Actual(ms.Language).
			Build())
	}

	totals := ctx.GlobalTotals()
	if totals.TotalRevenues.LessThan(globalRevenueThreshold) {
		findings = append(findings, NewFinding("LU-009").
			Severity(refdata.SeverityInfo).
			Message("Consolidated revenue is below the EUR 750 million CbCR threshold").
			Detail("globalTotalRevenues", totals.TotalRevenues.String()).
			Build())
	}

	if !hasLUReport {
		findings = append(findings, NewFinding("LU-010").
			Severity(refdata.SeverityWarning).
			Message("Reporting jurisdiction is Luxembourg but no CbcReport for LU is present").
			Build())
	}

	return findings
}

func (LuxembourgCountryValidator) checkPillar2Applicability(ctx *AnalysisContext) []Finding {
	if !ctx.Options.CheckPillar2 {
		return nil
	}
	var findings []Finding
	jur, ok := refdata.Pillar2JurisdictionByCode("LU")
	if !ok {
		return nil
	}

	if jur.EffectiveDate != "" {
		if effective, err := time.Parse("2006-01-02", jur.EffectiveDate); err == nil {
			if fyEnd, err2 := time.Parse("2006-01-02", ctx.Report.Message.MessageSpec.ReportingPeriod); err2 == nil && fyEnd.Before(effective) {
				findings = append(findings, NewFinding("LU-011").
					Severity(refdata.SeverityInfo).
					Message(fmt.Sprintf("Pillar Two mechanism (%s) is not yet effective for this fiscal year in LU", jur.ChargingMechanism())).
					Detail("effectiveDate", jur.EffectiveDate).
					Build())
				return findings
			}
		}
	}

	findings = append(findings, NewFinding("LU-012").
		Severity(refdata.SeverityInfo).
		Message(fmt.Sprintf("Luxembourg's charging mechanism is %s; safe-harbour eligibility is evaluated per jurisdiction", jur.ChargingMechanism())).
		Build())
	return findings
}
