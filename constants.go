package cbcrval

import "strings"

// MessageType distinguishes a CbC filing from a CbC status/acknowledgement
// message. Only CBC401 (the filing itself) is in scope for this validator.
type MessageType string

const (
	MessageTypeCbC    MessageType = "CBC401"
	MessageTypeStatus MessageType = "CBC402"
)

func (m MessageType) Valid() bool {
	return m == MessageTypeCbC || m == MessageTypeStatus
}

// MessageTypeIndic distinguishes a brand-new message from a correction of
// a previously filed one.
type MessageTypeIndic string

const (
	MessageTypeIndicNew         MessageTypeIndic = "CBC701"
	MessageTypeIndicCorrection  MessageTypeIndic = "CBC702"
)

func (m MessageTypeIndic) Valid() bool {
	return m == MessageTypeIndicNew || m == MessageTypeIndicCorrection
}

func (m MessageTypeIndic) IsCorrection() bool {
	return m == MessageTypeIndicCorrection
}

// DocTypeIndic tags one DocSpec block as new, corrected, deleted, resent,
// or one of the four test-mode variants of those. Production
// (OECD0-OECD3) and test (OECD10-OECD13) families must not mix within a
// single message.
type DocTypeIndic string

const (
	DocTypeResend     DocTypeIndic = "OECD0"
	DocTypeNew        DocTypeIndic = "OECD1"
	DocTypeCorrection DocTypeIndic = "OECD2"
	DocTypeDeletion   DocTypeIndic = "OECD3"

	DocTypeTestResend     DocTypeIndic = "OECD10"
	DocTypeTestNew        DocTypeIndic = "OECD11"
	DocTypeTestCorrection DocTypeIndic = "OECD12"
	DocTypeTestDeletion   DocTypeIndic = "OECD13"
)

var validDocTypeIndics = map[DocTypeIndic]bool{
	DocTypeResend: true, DocTypeNew: true, DocTypeCorrection: true, DocTypeDeletion: true,
	DocTypeTestResend: true, DocTypeTestNew: true, DocTypeTestCorrection: true, DocTypeTestDeletion: true,
}

func (d DocTypeIndic) Valid() bool {
	return validDocTypeIndics[d]
}

// IsTest reports whether d belongs to the OECD10-OECD13 test family.
func (d DocTypeIndic) IsTest() bool {
	switch d {
	case DocTypeTestResend, DocTypeTestNew, DocTypeTestCorrection, DocTypeTestDeletion:
		return true
	}
	return false
}

// IsCorrectionOrDeletion reports whether d requires corrDocRefId and
// corrMessageRefId to be populated.
func (d DocTypeIndic) IsCorrectionOrDeletion() bool {
	switch d {
	case DocTypeCorrection, DocTypeDeletion, DocTypeTestCorrection, DocTypeTestDeletion:
		return true
	}
	return false
}

// IsNewOrResend reports whether d must NOT carry correction references.
func (d DocTypeIndic) IsNewOrResend() bool {
	switch d {
	case DocTypeNew, DocTypeResend, DocTypeTestNew, DocTypeTestResend:
		return true
	}
	return false
}

// ReportingRole describes who is submitting the CbC report.
type ReportingRole string

const (
	ReportingRoleUPE       ReportingRole = "CBC801"
	ReportingRoleSurrogate ReportingRole = "CBC802"
	ReportingRoleOther     ReportingRole = "CBC803"
)

func (r ReportingRole) Valid() bool {
	switch r {
	case ReportingRoleUPE, ReportingRoleSurrogate, ReportingRoleOther:
		return true
	}
	return false
}

// BusinessActivity enumerates the CBC501-CBC513 activity codes a
// constituent entity can report under a jurisdiction.
type BusinessActivity string

const (
	ActivityResearchAndDevelopment      BusinessActivity = "CBC501"
	ActivityHoldingOrManagingIP         BusinessActivity = "CBC502"
	ActivityPurchasingOrProcurement     BusinessActivity = "CBC503"
	ActivityManufacturingOrProduction   BusinessActivity = "CBC504"
	ActivitySalesMarketingDistribution  BusinessActivity = "CBC505"
	ActivityAdministrativeManagement    BusinessActivity = "CBC506"
	ActivityProvisionOfServices         BusinessActivity = "CBC507"
	ActivityInternalFinancing           BusinessActivity = "CBC508"
	ActivityRegulatedFinancialServices  BusinessActivity = "CBC509"
	ActivityInsurance                   BusinessActivity = "CBC510"
	ActivityHoldingSharesOrEquity       BusinessActivity = "CBC511"
	ActivityDormant                     BusinessActivity = "CBC512"
	ActivityOther                       BusinessActivity = "CBC513"
)

var validBusinessActivities = map[BusinessActivity]bool{
	ActivityResearchAndDevelopment: true, ActivityHoldingOrManagingIP: true,
	ActivityPurchasingOrProcurement: true, ActivityManufacturingOrProduction: true,
	ActivitySalesMarketingDistribution: true, ActivityAdministrativeManagement: true,
	ActivityProvisionOfServices: true, ActivityInternalFinancing: true,
	ActivityRegulatedFinancialServices: true, ActivityInsurance: true,
	ActivityHoldingSharesOrEquity: true, ActivityDormant: true, ActivityOther: true,
}

func (b BusinessActivity) Valid() bool {
	return validBusinessActivities[b]
}

// IsHoldingOnly reports whether b is one of the two activities the
// data-quality suite treats as "holding-only" for asset/headcount sanity
// checks (§4.4.5, §4.4.8).
func (b BusinessActivity) IsHoldingOnly() bool {
	return b == ActivityHoldingOrManagingIP || b == ActivityHoldingSharesOrEquity
}

// IsFinanceRelated reports whether b is one of the activities the
// dividend-exclusion reminder (XFV-005) applies to.
func (b BusinessActivity) IsFinanceRelated() bool {
	return b.IsHoldingOnly() || b == ActivityInternalFinancing || b == ActivityRegulatedFinancialServices
}

// acceptedLanguageCodes are the ISO 639-1 codes the Luxembourg country
// rules accept for the MessageSpec language element.
var acceptedLanguageCodes = map[string]bool{
	"en": true, "fr": true, "de": true,
}

// IsAcceptedLanguageCode reports whether code is accepted for a CbC
// filing's language element.
func IsAcceptedLanguageCode(code string) bool {
	return acceptedLanguageCodes[strings.ToLower(code)]
}
