package cbcrval

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

// BusinessActivityValidator checks the CBC501-CBC513 activity codes
// reported for each constituent entity: enum membership, duplicate
// codes, the CBC513 (Other) narrative requirement, and the CBC512
// (Dormant) exclusivity rules. Grounded on the teacher's
// check_vat_exempt.go category-presence/exclusivity style.
type BusinessActivityValidator struct{}

func (BusinessActivityValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "business_activity",
		Name:        "BusinessActivity",
		Description: "Validates reported business activity codes.",
		Category:    refdata.CategoryBusiness,
		Order:       140,
		Enabled:     true,
	}
}

func (BusinessActivityValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	for ri, cr := range ctx.Report.Message.CbcBody.CbcReports {
		jurisdictionHasAny := false

		for ei, ce := range cr.ConstEntities {
			xp := XPathConstEntity(ri, ei) + "/BusinessActivities"
			seen := make(map[BusinessActivity]int)

			for _, code := range ce.BusinessActivities {
				jurisdictionHasAny = true
				seen[code]++

				if !code.Valid() {
					findings = append(findings, NewFinding("BIZ-001").
						Message(fmt.Sprintf("Business activity code %q is not one of CBC501-CBC513", code)).
						XPath(xp).
						Actual(string(code)).
						Build())
				}
			}

			for code, count := range seen {
				if count > 1 {
					findings = append(findings, NewFinding("BIZ-003").
						Severity(refdata.SeverityInfo).
						Message(fmt.Sprintf("Business activity code %s is reported more than once for this entity", code)).
						XPath(xp).
						Build())
				}
			}

			if seen[ActivityOther] > 0 && IsBlank(ce.OtherEntityInfo) {
				findings = append(findings, NewFinding("BIZ-004").
					Severity(refdata.SeverityInfo).
					Message("CBC513 (Other) activity reported without an OtherEntityInfo explanation").
					XPath(XPathConstEntity(ri, ei) + "/OtherEntityInfo").
					Build())
			}

			if seen[ActivityDormant] > 0 {
				s := cr.Summary
				if s.TotalRevenues.Value.IsPositive() || s.ProfitOrLoss.Value.IsPositive() || s.NumberOfEmployees.IsPositive() {
					findings = append(findings, NewFinding("BIZ-005").
						Severity(refdata.SeverityWarning).
						Message("CBC512 (Dormant) is reported together with non-zero revenue, profit, or employees").
						XPath(xp).
						Build())
				}
				if len(seen) > 1 {
					findings = append(findings, NewFinding("BIZ-006").
						Severity(refdata.SeverityWarning).
						Message("CBC512 (Dormant) is reported together with an active business activity code").
						XPath(xp).
						Build())
				}
			}

			if isHoldingOnly(seen) {
				if cr.Summary.NumberOfEmployees.GreaterThan(decimal.NewFromInt(10)) ||
					cr.Summary.TotalRevenues.Value.GreaterThan(decimal.New(10, 6)) {
					findings = append(findings, NewFinding("BIZ-007").
						Severity(refdata.SeverityInfo).
						Message("Holding-only business activity reported with more than 10 employees or 10,000,000 revenue").
						XPath(xp).
						Build())
				}
			}
		}

		if !jurisdictionHasAny && len(cr.ConstEntities) > 0 {
			findings = append(findings, NewFinding("BIZ-002").
				Severity(refdata.SeverityWarning).
				Message("No business activity is reported for any entity in this jurisdiction").
				XPath(XPathCbcReportField(ri, "ConstEntities")).
				Build())
		}
	}

	return findings
}

// isHoldingOnly reports whether every activity code reported is one of
// the holding-only activities (CBC502, CBC511).
func isHoldingOnly(seen map[BusinessActivity]int) bool {
	if len(seen) == 0 {
		return false
	}
	for code := range seen {
		if !code.IsHoldingOnly() {
			return false
		}
	}
	return true
}
