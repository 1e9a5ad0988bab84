package cbcrval

import (
	"fmt"

	"github.com/oecdtools/cbcrval/refdata"
)

// CountryCodeValidator enforces the generic ISO 3166-1 alpha-2 country
// code rules (CC-*) wherever a code appears in the filing: the
// reporting jurisdiction of each CbcReport, its uniqueness across the
// filing, and each constituent entity's incorporation country. Runs in
// the schema-conformity phase since a bad country code is a structural
// defect, not a business-rule judgment. Grounded on the teacher's
// validate_german.go (country-code-prefix presence test), generalized
// from one fixed country to the full ISO list via refdata.
type CountryCodeValidator struct{}

func (CountryCodeValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "country_codes",
		Name:        "CountryCodes",
		Description: "Validates ISO 3166-1 alpha-2 country codes and jurisdiction uniqueness.",
		Category:    refdata.CategorySchemaConformity,
		Order:       50,
		Enabled:     true,
	}
}

func (CountryCodeValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	seenAt := make(map[string]int) // ResCountryCode -> first report index seen
	for i, cr := range ctx.Report.Message.CbcBody.CbcReports {
		code := cr.ResCountryCode
		xp := XPathCbcReportField(i, "ResCountryCode")

		if !refdata.IsValidCountryCode(code) {
			findings = append(findings, NewFinding("CC-001").
				Message(fmt.Sprintf("ResCountryCode %q is not a recognized ISO 3166-1 alpha-2 code", code)).
				XPath(xp).
				Actual(code).
				Build())
		} else if first, ok := seenAt[code]; ok {
			findings = append(findings, NewFinding("CC-002").
				Message(fmt.Sprintf("ResCountryCode %q also appears on CbcReport[%d]; jurisdictions must be reported at most once", code, first)).
				XPath(xp).
				Detail("firstSeenAt", XPathCbcReport(first)).
				Actual(code).
				Build())
		} else {
			seenAt[code] = i
		}

		for ei, ce := range cr.ConstEntities {
			if IsBlank(ce.IncorpCountryCode) {
				continue
			}
			if !refdata.IsValidCountryCode(ce.IncorpCountryCode) {
				findings = append(findings, NewFinding("CC-003").
					Message(fmt.Sprintf("IncorpCountryCode %q is not a recognized ISO 3166-1 alpha-2 code", ce.IncorpCountryCode)).
					XPath(XPathConstEntity(i, ei) + "/IncorpCountryCode").
					Actual(ce.IncorpCountryCode).
					Build())
			}
		}
	}

	return findings
}
