package cbcrval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oecdtools/cbcrval/refdata"
)

// messageRefIdPattern mirrors the DocRefId character class: letters,
// digits, dot, underscore, hyphen.
var messageRefIdPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// MessageSpecValidator checks the transport-level header of a filing:
// MessageRefId shape and cross-checks, messageType/messageTypeIndic
// enum membership and correction-chain consistency, ReportingPeriod and
// Timestamp formats, and the sending/receiving authority codes.
// Grounded on the mutual-exclusion and presence-test style of the
// teacher's checkBRO (BR-CO-3) and validate_german.go.
type MessageSpecValidator struct{}

func (MessageSpecValidator) Metadata() ValidatorMetadata {
	return ValidatorMetadata{
		ID:          "messagespec",
		Name:        "MessageSpec",
		Description: "Validates the MessageSpec transport header.",
		Category:    refdata.CategoryBusiness,
		Order:       100,
		Enabled:     true,
	}
}

func (MessageSpecValidator) Validate(ctx *AnalysisContext) []Finding {
	var findings []Finding
	ms := ctx.Report.Message.MessageSpec
	xp := XPathMessageSpec()

	switch {
	case IsBlank(ms.MessageRefId):
		findings = append(findings, NewFinding("MSG-001").
			Message("MessageRefId is required and must not be blank").
			XPath(XPathMessageSpecField("MessageRefId")).
			Build())
	case len(ms.MessageRefId) > 170:
		findings = append(findings, NewFinding("MSG-002").
			Message(fmt.Sprintf("MessageRefId is %d characters, exceeding the 170-character limit", len(ms.MessageRefId))).
			XPath(XPathMessageSpecField("MessageRefId")).
			Actual(fmt.Sprintf("%d", len(ms.MessageRefId))).
			Expected("<= 170").
			Build())
	case !messageRefIdPattern.MatchString(ms.MessageRefId):
		findings = append(findings, NewFinding("MSG-003").
			Message("MessageRefId contains characters outside [A-Za-z0-9._-]").
			XPath(XPathMessageSpecField("MessageRefId")).
			Actual(ms.MessageRefId).
			Build())
	}

	if !IsBlank(ms.MessageRefId) && !IsBlank(ms.SendingCompetentAuthority) {
		if !strings.HasPrefix(ms.MessageRefId, ms.SendingCompetentAuthority) {
			findings = append(findings, NewFinding("MSG-004").
				Severity(refdata.SeverityWarning).
				Message("MessageRefId does not begin with the sending competent authority's country code").
				XPath(XPathMessageSpecField("MessageRefId")).
				Actual(ms.MessageRefId).
				Expected(ms.SendingCompetentAuthority + "...").
				Build())
		}
	}

	if !IsBlank(ms.MessageRefId) && len(ms.ReportingPeriod) >= 4 {
		year := ms.ReportingPeriod[:4]
		if !strings.Contains(ms.MessageRefId, year) {
			findings = append(findings, NewFinding("MSG-005").
				Severity(refdata.SeverityWarning).
				Message("MessageRefId does not contain the reporting year found in ReportingPeriod").
				XPath(XPathMessageSpecField("MessageRefId")).
				Detail("reportingYear", year).
				Build())
		}
	}

	if !ms.MessageType.Valid() {
		findings = append(findings, NewFinding("MSG-008").
			Message(fmt.Sprintf("MessageType %q is not one of CBC401, CBC402", ms.MessageType)).
			XPath(XPathMessageSpecField("MessageType")).
			Actual(string(ms.MessageType)).
			Build())
	}

	if !ms.MessageTypeIndic.Valid() {
		findings = append(findings, NewFinding("MSG-009").
			Message(fmt.Sprintf("MessageTypeIndic %q is not one of CBC701, CBC702", ms.MessageTypeIndic)).
			XPath(XPathMessageSpecField("MessageTypeIndic")).
			Actual(string(ms.MessageTypeIndic)).
			Build())
	} else {
		switch {
		case ms.MessageTypeIndic.IsCorrection() && IsBlank(ms.CorrMessageRefId):
			findings = append(findings, NewFinding("MSG-006").
				Message("CBC702 correction messages must carry CorrMessageRefId").
				XPath(XPathMessageSpecField("CorrMessageRefId")).
				Build())
		case !ms.MessageTypeIndic.IsCorrection() && !IsBlank(ms.CorrMessageRefId):
			findings = append(findings, NewFinding("MSG-007").
				Message("CBC701 new messages must not carry CorrMessageRefId").
				XPath(XPathMessageSpecField("CorrMessageRefId")).
				Actual(ms.CorrMessageRefId).
				Build())
		}
	}

	if !IsValidDate(ms.ReportingPeriod) {
		findings = append(findings, NewFinding("MSG-010").
			Message(fmt.Sprintf("ReportingPeriod %q is not a valid YYYY-MM-DD date", ms.ReportingPeriod)).
			XPath(XPathMessageSpecField("ReportingPeriod")).
			Actual(ms.ReportingPeriod).
			Build())
	} else if IsFutureDate(ms.ReportingPeriod) {
		findings = append(findings, NewFinding("APP-007").
			Message("ReportingPeriod is in the future").
			XPath(XPathMessageSpecField("ReportingPeriod")).
			Actual(ms.ReportingPeriod).
			Build())
	}

	if ms.Timestamp != "" && !IsValidTimestamp(ms.Timestamp) {
		findings = append(findings, NewFinding("MSG-011").
			Message("Timestamp does not match any accepted ISO 8601 variant").
			XPath(XPathMessageSpecField("Timestamp")).
			Actual(ms.Timestamp).
			Build())
	}

	if !refdata.IsValidCountryCode(ms.SendingCompetentAuthority) {
		findings = append(findings, NewFinding("MSG-012").
			Message(fmt.Sprintf("SendingCompetentAuthority %q is not a recognized ISO 3166-1 alpha-2 code", ms.SendingCompetentAuthority)).
			XPath(XPathMessageSpecField("SendingCompetentAuthority")).
			Actual(ms.SendingCompetentAuthority).
			Build())
	}
	if !refdata.IsValidCountryCode(ms.ReceivingCompetentAuthority) {
		findings = append(findings, NewFinding("MSG-013").
			Message(fmt.Sprintf("ReceivingCompetentAuthority %q is not a recognized ISO 3166-1 alpha-2 code", ms.ReceivingCompetentAuthority)).
			XPath(XPathMessageSpecField("ReceivingCompetentAuthority")).
			Actual(ms.ReceivingCompetentAuthority).
			Build())
	}

	if ms.MessageType == MessageTypeCbC &&
		ms.SendingCompetentAuthority != "" &&
		ms.ReceivingCompetentAuthority != "" &&
		ms.SendingCompetentAuthority != ms.ReceivingCompetentAuthority {
		findings = append(findings, NewFinding("MSG-014").
			Severity(refdata.SeverityWarning).
			Message("Sending and receiving competent authority differ for a CBC401 filing").
			XPath(xp).
			Detail("sending", ms.SendingCompetentAuthority).
			Detail("receiving", ms.ReceivingCompetentAuthority).
			Build())
	}

	return findings
}
