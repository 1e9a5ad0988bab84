package cbcrval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oecdtools/cbcrval/refdata"
)

var repeatedCharPattern = regexp.MustCompile(`^(.)\1*$`)

// tinPlaceholders are values the OECD's common-errors guidance
// specifically calls out as non-TINs.
var tinPlaceholders = map[string]bool{
	"0": true, "1": true, "9": true, "X": true,
	"N/A": true, "NONE": true, "NULL": true, "UNKNOWN": true,
}

// isPlaceholderTIN reports whether value is a known TIN placeholder,
// including any-length runs of a single repeated character among the
// blacklisted digits/letters.
func isPlaceholderTIN(value string) bool {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if tinPlaceholders[upper] {
		return true
	}
	if repeatedCharPattern.MatchString(upper) {
		switch upper[0:1] {
		case "0", "1", "9", "X":
			return true
		}
	}
	return false
}

// TINValidator checks the reporting entity's and every constituent
// entity's tax identification numbers: presence, shape, placeholder
// detection, and issuing-country/pattern consistency. Grounded on the
// teacher checkBRO's validateVATIDPrefix closure pattern.
type TINValidator struct{}

func (TINValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "tin",
		Name:        "TIN",
		Description: "Validates tax identification numbers for shape and plausibility.",
		Category:    refdata.CategoryBusiness,
		Order:       120,
		Enabled:     true,
	}
}

func (v TINValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	re := ctx.Report.Message.CbcBody.ReportingEntity
	if len(re.TINs) == 0 {
		findings = append(findings, NewFinding("TIN-001").
			Message("Reporting entity has no TIN").
			XPath(XPathReportingEntity() + "/TIN").
			Build())
	}
	for i, tin := range re.TINs {
		findings = append(findings, v.checkOne(tin, fmt.Sprintf("%s/TIN[%d]", XPathReportingEntity(), i+1))...)
	}

	for _, it := range IterateEntities(ctx.Report) {
		for i, tin := range it.Entity.TINs {
			xp := fmt.Sprintf("%s/TIN[%d]", XPathConstEntity(it.ReportIndex, it.EntityIndex), i+1)
			findings = append(findings, v.checkOne(tin, xp)...)
		}
	}

	return findings
}

func (TINValidator) checkOne(tin TIN, xpath string) []Finding {
	var findings []Finding

	trimmed := strings.TrimSpace(tin.Value)
	if trimmed != tin.Value {
		findings = append(findings, NewFinding("TIN-006").
			Severity(refdata.SeverityWarning).
			Message("TIN value has leading or trailing whitespace").
			XPath(xpath).
			Actual(tin.Value).
			Build())
	}

	if trimmed == "" {
		findings = append(findings, NewFinding("TIN-002").
			Message("TIN value is blank").
			XPath(xpath).
			Build())
		return findings
	}

	if strings.EqualFold(trimmed, "NOTIN") {
		findings = append(findings, NewFinding("TIN-007").
			Severity(refdata.SeverityInfo).
			Message("TIN uses the NOTIN sentinel; the reason should be given in OtherEntityInfo").
			XPath(xpath).
			Build())
		return findings
	}

	if len(trimmed) < 2 || len(trimmed) > 200 {
		findings = append(findings, NewFinding("TIN-003").
			Message(fmt.Sprintf("TIN length %d is outside the accepted range [2, 200]", len(trimmed))).
			XPath(xpath).
			Actual(fmt.Sprintf("%d", len(trimmed))).
			Build())
	}

	if isPlaceholderTIN(trimmed) {
		if repeatedCharPattern.MatchString(strings.ToUpper(trimmed)) {
			findings = append(findings, NewFinding("TIN-004").
				Severity(refdata.SeverityWarning).
				Message("TIN is a repeated-character placeholder").
				XPath(xpath).
				Actual(trimmed).
				Build())
		} else {
			findings = append(findings, NewFinding("TIN-005").
				Message("TIN matches a known placeholder value").
				XPath(xpath).
				Actual(trimmed).
				Build())
		}
	}

	if IsBlank(tin.IssuedBy) {
		findings = append(findings, NewFinding("TIN-008").
			Severity(refdata.SeverityWarning).
			Message("TIN is missing the IssuedBy attribute").
			XPath(xpath).
			Build())
		return findings
	}

	country, ok := refdata.CountryByCode(tin.IssuedBy)
	if !ok {
		findings = append(findings, NewFinding("TIN-009").
			Message(fmt.Sprintf("TIN IssuedBy %q is not a recognized ISO 3166-1 alpha-2 code", tin.IssuedBy)).
			XPath(xpath).
			Actual(tin.IssuedBy).
			Build())
		return findings
	}

	if country.TINPattern != nil && !country.TINPattern.MatchString(trimmed) {
		findings = append(findings, NewFinding("TIN-010").
			Severity(refdata.SeverityWarning).
			Message(fmt.Sprintf("TIN does not match the expected format for %s", tin.IssuedBy)).
			XPath(xpath).
			Actual(trimmed).
			Build())
	}

	return findings
}
