package cbcrval

import "github.com/shopspring/decimal"

// ParsedReport is the deserialized CbC XML exchange message. It is
// produced by an external parser and never mutated after construction;
// every validator in this module only reads from it.
type ParsedReport struct {
	Message Message
}

// Message is the top-level CBC_OECD element.
type Message struct {
	MessageSpec MessageSpec
	CbcBody     CbcBody
}

// MessageSpec carries the transport-level metadata of one filing.
type MessageSpec struct {
	SendingCompetentAuthority   string // ISO 3166-1 alpha-2
	ReceivingCompetentAuthority string // ISO 3166-1 alpha-2
	MessageType                 MessageType
	Language                    string // optional, ISO 639-1
	Warning                     string // optional free text
	Contact                     string // optional free text
	MessageRefId                string
	MessageTypeIndic            MessageTypeIndic
	CorrMessageRefId            string // required iff MessageTypeIndic == CBC702
	ReportingPeriod              string // YYYY-MM-DD, last day of the fiscal year
	Timestamp                    string // ISO 8601
}

// CbcBody holds one reporting entity's filing: its own identity plus one
// CbcReport per jurisdiction it has activity in.
type CbcBody struct {
	ReportingEntity ReportingEntity
	CbcReports      []CbcReport
	AdditionalInfo  []AdditionalInfo
}

// ReportingEntity identifies the MNE group member submitting the report.
type ReportingEntity struct {
	Names         []string
	Addresses     []Address
	TINs          []TIN
	ReportingRole ReportingRole
	DocSpec       DocSpec
}

// Address is a postal address attached to an entity.
type Address struct {
	CountryCode string
	Line        string
	City        string
	PostCode    string
}

// TIN is a tax identification number, optionally tagged with the
// jurisdiction that issued it.
type TIN struct {
	Value    string
	IssuedBy string // optional ISO 3166-1 alpha-2
}

// DocSpec appears on the reporting entity, on every CbcReport, and on
// every AdditionalInfo block; it carries the correction-chain metadata
// for that specific document.
type DocSpec struct {
	DocTypeIndic     DocTypeIndic
	DocRefId         string
	CorrDocRefId     string // required iff DocTypeIndic is a correction/deletion variant
	CorrMessageRefId string // required iff DocTypeIndic is a correction/deletion variant
}

// CbcReport is the per-jurisdiction Table 1 (Summary) and Table 2
// (ConstEntities) block.
type CbcReport struct {
	ResCountryCode string // ISO 3166-1 alpha-2
	DocSpec        DocSpec
	Summary        Summary
	ConstEntities  []ConstituentEntity
}

// Money is a monetary amount plus the currency it was reported in.
type Money struct {
	Value    decimal.Decimal
	Currency string
}

// IsZero reports whether the amount is exactly zero. A zero-value Money
// with no currency set also reports true, matching "field absent".
func (m Money) IsZero() bool {
	return m.Value.IsZero()
}

// Summary is CbC Table 1: the aggregate financials for one jurisdiction.
type Summary struct {
	TotalRevenues       Money
	UnrelatedRevenues   *Money // optional
	RelatedRevenues     *Money // optional
	ProfitOrLoss        Money
	TaxPaid             Money
	TaxAccrued          Money
	Capital             Money
	AccumulatedEarnings Money
	TangibleAssets      Money
	NumberOfEmployees   decimal.Decimal
}

// ConstituentEntity is one row of CbC Table 2 for a given jurisdiction.
type ConstituentEntity struct {
	Names              []string
	TINs               []TIN
	Addresses          []Address
	IncorpCountryCode  string // optional ISO 3166-1 alpha-2
	AcctPeriodStart    string // optional YYYY-MM-DD
	AcctPeriodEnd      string // optional YYYY-MM-DD
	BusinessActivities []BusinessActivity
	OtherEntityInfo    string // required narrative when CBC513 is used
}

// AdditionalInfo is free-text commentary attached at the CbcBody level,
// optionally scoped to specific jurisdictions.
type AdditionalInfo struct {
	DocSpec         DocSpec
	OtherInfo       string
	ResCountryCodes []string // optional, empty means "applies to all"
}
