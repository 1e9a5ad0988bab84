package cbcrval

import (
	"fmt"
	"regexp"

	"github.com/oecdtools/cbcrval/refdata"
)

var docRefIdPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DocSpecValidator checks every DocSpec occurrence in the message (the
// reporting entity, each CbcReport, each AdditionalInfo block) for
// shape, in-file uniqueness, correction-chain consistency, and
// cross-matrix consistency with MessageSpec.MessageTypeIndic. Grounded
// on the compact cross-field consistency style of the teacher's
// check_peppol.go/validate_peppol.go.
type DocSpecValidator struct{}

func (DocSpecValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "docspec",
		Name:        "DocSpec",
		Description: "Validates every DocSpec occurrence and its correction-chain references.",
		Category:    refdata.CategoryBusiness,
		Order:       110,
		Enabled:     true,
	}
}

// docSpecOccurrence pairs a DocSpec with the canonical xpath it was
// found at, so the validator can walk all three kinds of occurrence
// uniformly.
type docSpecOccurrence struct {
	spec  DocSpec
	xpath string
}

func (v DocSpecValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding

	occurrences := []docSpecOccurrence{
		{ctx.Report.Message.CbcBody.ReportingEntity.DocSpec, XPathReportingEntityDocSpec()},
	}
	for i, cr := range ctx.Report.Message.CbcBody.CbcReports {
		occurrences = append(occurrences, docSpecOccurrence{cr.DocSpec, XPathCbcReportDocSpec(i)})
	}
	for k, ai := range ctx.Report.Message.CbcBody.AdditionalInfo {
		occurrences = append(occurrences, docSpecOccurrence{ai.DocSpec, XPathAdditionalInfo(k) + "/DocSpec"})
	}

	messageTypeIndic := ctx.Report.Message.MessageSpec.MessageTypeIndic
	seenTestFamily := make(map[bool]bool) // true = test family, false = production family
	seenCorrection, seenDeletion := false, false

	for _, occ := range occurrences {
		ds := occ.spec

		if IsBlank(ds.DocRefId) {
			findings = append(findings, NewFinding("DOC-001").
				Message("DocRefId is required and must not be blank").
				XPath(occ.xpath + "/DocRefId").
				Build())
		} else {
			if len(ds.DocRefId) > 200 {
				findings = append(findings, NewFinding("DOC-003").
					Message(fmt.Sprintf("DocRefId is %d characters, exceeding the 200-character limit", len(ds.DocRefId))).
					XPath(occ.xpath + "/DocRefId").
					Actual(fmt.Sprintf("%d", len(ds.DocRefId))).
					Build())
			}
			if !docRefIdPattern.MatchString(ds.DocRefId) {
				findings = append(findings, NewFinding("DOC-009").
					Message("DocRefId contains characters outside [A-Za-z0-9._-]").
					XPath(occ.xpath + "/DocRefId").
					Actual(ds.DocRefId).
					Build())
			}
			if len(ds.DocRefId) < 2 || !refdata.IsValidCountryCode(ds.DocRefId[:2]) {
				findings = append(findings, NewFinding("DOC-010").
					Severity(refdata.SeverityInfo).
					Message("DocRefId is recommended to begin with a country code").
					XPath(occ.xpath + "/DocRefId").
					Actual(ds.DocRefId).
					Build())
			}

			if !ctx.RegisterDocRefId(ds.DocRefId, occ.xpath+"/DocRefId") {
				first, _ := ctx.FirstSeenDocRefId(ds.DocRefId)
				findings = append(findings, NewFinding("DOC-002").
					Message(fmt.Sprintf("DocRefId %q is used more than once within this file", ds.DocRefId)).
					XPath(occ.xpath+"/DocRefId").
					Detail("firstSeenAt", first).
					Build())
			}
		}

		if !ds.DocTypeIndic.Valid() {
			findings = append(findings, NewFinding("DOC-004").
				Message(fmt.Sprintf("DocTypeIndic %q is not a recognized OECD0-3/OECD10-13 value", ds.DocTypeIndic)).
				XPath(occ.xpath + "/DocTypeIndic").
				Actual(string(ds.DocTypeIndic)).
				Build())
		} else {
			seenTestFamily[ds.DocTypeIndic.IsTest()] = true

			if ds.DocTypeIndic.IsCorrectionOrDeletion() {
				if IsBlank(ds.CorrDocRefId) {
					findings = append(findings, NewFinding("DOC-005").
						Message("Correction/deletion DocTypeIndic requires CorrDocRefId").
						XPath(occ.xpath + "/CorrDocRefId").
						Build())
				} else if ds.CorrDocRefId == ds.DocRefId {
					findings = append(findings, NewFinding("DOC-007").
						Message("CorrDocRefId must not equal this document's own DocRefId").
						XPath(occ.xpath + "/CorrDocRefId").
						Actual(ds.CorrDocRefId).
						Build())
				}
				if IsBlank(ds.CorrMessageRefId) {
					findings = append(findings, NewFinding("DOC-006").
						Message("Correction/deletion DocTypeIndic requires CorrMessageRefId").
						XPath(occ.xpath + "/CorrMessageRefId").
						Build())
				}
			} else if ds.DocTypeIndic.IsNewOrResend() {
				if !IsBlank(ds.CorrDocRefId) || !IsBlank(ds.CorrMessageRefId) {
					findings = append(findings, NewFinding("DOC-008").
						Message("New/resend DocTypeIndic must not carry CorrDocRefId or CorrMessageRefId").
						XPath(occ.xpath).
						Build())
				}
			}

			switch ds.DocTypeIndic {
			case DocTypeCorrection, DocTypeTestCorrection:
				seenCorrection = true
			case DocTypeDeletion, DocTypeTestDeletion:
				seenDeletion = true
			}

			if messageTypeIndic.Valid() {
				mismatched := (messageTypeIndic == MessageTypeIndicNew && ds.DocTypeIndic.IsCorrectionOrDeletion()) ||
					(messageTypeIndic.IsCorrection() && (ds.DocTypeIndic == DocTypeNew || ds.DocTypeIndic == DocTypeTestNew))
				if mismatched {
					findings = append(findings, NewFinding("DOC-004").
						Severity(refdata.SeverityError).
						Message(fmt.Sprintf("DocTypeIndic %q is inconsistent with MessageTypeIndic %q", ds.DocTypeIndic, messageTypeIndic)).
						XPath(occ.xpath + "/DocTypeIndic").
						Actual(string(ds.DocTypeIndic)).
						Expected(string(messageTypeIndic)).
						Build())
				}
			}
		}
	}

	if seenTestFamily[true] && seenTestFamily[false] {
		findings = append(findings, NewFinding("DOC-004").
			Severity(refdata.SeverityError).
			Message("Production (OECD0-3) and test (OECD10-13) DocTypeIndic families must not be mixed within one message").
			XPath("/CBC_OECD/CbcBody").
			Build())
	}
	if seenCorrection && seenDeletion {
		findings = append(findings, NewFinding("DOC-004").
			Severity(refdata.SeverityError).
			Message("Mixing correction (OECD2/OECD12) and deletion (OECD3/OECD13) DocTypeIndic within one message is inconsistent").
			XPath("/CBC_OECD/CbcBody").
			Build())
	}

	findings = append(findings, v.checkGlobalUniqueness(ctx, occurrences)...)

	return findings
}

// checkGlobalUniqueness consults the external DocRefIdStore when
// Options.CheckGlobalDocRefIds is enabled. I/O failure degrades to a
// single informational finding; it never aborts validation.
func (DocSpecValidator) checkGlobalUniqueness(ctx *AnalysisContext, occurrences []docSpecOccurrence) []Finding {
	if !ctx.Options.CheckGlobalDocRefIds || ctx.DocRefStore == nil {
		return nil
	}

	ids := make([]string, 0, len(occurrences))
	byID := make(map[string]string, len(occurrences))
	for _, occ := range occurrences {
		if IsBlank(occ.spec.DocRefId) {
			continue
		}
		ids = append(ids, occ.spec.DocRefId)
		byID[occ.spec.DocRefId] = occ.xpath
	}
	if len(ids) == 0 {
		return nil
	}

	result, err := ctx.DocRefStore.BatchCheck(Background(), ids)
	if err != nil {
		return []Finding{
			NewFinding("DOC-013").
				Message("Global DocRefId uniqueness check could not be completed and was skipped").
				Detail("error", err.Error()).
				Build(),
		}
	}

	var findings []Finding
	isCorrection := ctx.IsCorrection()
	for _, dup := range result.Duplicates {
		xp := byID[dup.DocRefId]
		if isCorrection && dup.ExistingRecord.IsSuperseded {
			findings = append(findings, NewFinding("DOC-012").
				Severity(refdata.SeverityWarning).
				Message(fmt.Sprintf("DocRefId %q was already recorded but the existing record is superseded, consistent with this correction", dup.DocRefId)).
				XPath(xp).
				OECDErrorCode("80000").
				Build())
			continue
		}
		findings = append(findings, NewFinding("DOC-011").
			Message(fmt.Sprintf("DocRefId %q has already been used in a prior submission", dup.DocRefId)).
			XPath(xp).
			OECDErrorCode("80000").
			Detail("issuingJurisdiction", dup.ExistingRecord.IssuingJurisdiction).
			Detail("reportingPeriod", dup.ExistingRecord.ReportingPeriod).
			Build())
	}
	return findings
}
