package refdata

// Rule is the static metadata attached to one validation rule: its stable
// identifier, human name, category, default severity, and a pointer back
// into the specification section that mandates it. Validators never
// invent severities or categories inline; they look a Rule up by id and
// let the result builder apply its defaults, overriding only when the
// specific finding warrants a different severity than the rule's default.
type Rule struct {
	ID              string
	Name            string
	Category        Category
	DefaultSeverity Severity
	Reference       string
}

// RuleByID looks up a rule's static metadata by its stable id. The
// boolean result reports whether the id is registered.
func RuleByID(id string) (Rule, bool) {
	r, ok := ruleRegistry[id]
	return r, ok
}

// AllRules returns every registered rule, keyed by id.
func AllRules() map[string]Rule {
	out := make(map[string]Rule, len(ruleRegistry))
	for k, v := range ruleRegistry {
		out[k] = v
	}
	return out
}

var ruleRegistry = func() map[string]Rule {
	m := make(map[string]Rule, 128)
	for _, group := range [][]Rule{
		messageSpecRules, docSpecRules, tinRules, summaryRules,
		businessActivityRules, countryCodeRules, pillar2Rules, luRules,
		commonErrorRules, crossFieldRules, completenessRules, appRules,
	} {
		for _, r := range group {
			m[r.ID] = r
		}
	}
	return m
}()

// Message specification rules (MSG-*), spec §4.4.1.
var messageSpecRules = []Rule{
	{"MSG-001", "MessageRefId required", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-002", "MessageRefId too long", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-003", "MessageRefId invalid characters", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-004", "MessageRefId does not begin with sending authority code", CategoryBusiness, SeverityWarning, "§4.4.1"},
	{"MSG-005", "MessageRefId year does not match reporting period", CategoryBusiness, SeverityWarning, "§4.4.1"},
	{"MSG-006", "CBC702 correction missing CorrMessageRefId", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-007", "CBC701 new message must not carry CorrMessageRefId", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-008", "Invalid MessageType", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-009", "Invalid MessageTypeIndic", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-010", "Invalid ReportingPeriod date format", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-011", "Invalid Timestamp format", CategorySchemaConformity, SeverityWarning, "§4.4.1"},
	{"MSG-012", "Invalid SendingCompetentAuthority code", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-013", "Invalid ReceivingCompetentAuthority code", CategorySchemaConformity, SeverityCritical, "§4.4.1"},
	{"MSG-014", "CBC401 sending and receiving authority differ", CategoryBusiness, SeverityWarning, "§4.4.1"},
}

// DocSpec rules (DOC-*), spec §4.4.2.
var docSpecRules = []Rule{
	{"DOC-001", "DocRefId required", CategorySchemaConformity, SeverityCritical, "§4.4.2"},
	{"DOC-002", "Duplicate DocRefId within file", CategorySchemaConformity, SeverityCritical, "§4.4.2"},
	{"DOC-003", "DocRefId too long", CategorySchemaConformity, SeverityCritical, "§4.4.2"},
	{"DOC-004", "DocTypeIndic/MessageTypeIndic matrix inconsistency", CategoryBusiness, SeverityError, "§4.4.2"},
	{"DOC-005", "Correction DocTypeIndic missing CorrDocRefId", CategorySchemaConformity, SeverityCritical, "§4.4.2"},
	{"DOC-006", "Correction DocTypeIndic missing CorrMessageRefId", CategorySchemaConformity, SeverityCritical, "§4.4.2"},
	{"DOC-007", "CorrDocRefId equals DocRefId", CategoryBusiness, SeverityError, "§4.4.2"},
	{"DOC-008", "New DocTypeIndic must not carry correction references", CategoryBusiness, SeverityError, "§4.4.2"},
	{"DOC-009", "DocRefId invalid characters", CategorySchemaConformity, SeverityCritical, "§4.4.2"},
	{"DOC-010", "DocRefId should begin with country code", CategoryDataQuality, SeverityInfo, "§4.4.2"},
	{"DOC-011", "DocRefId already used in a prior submission", CategoryBusiness, SeverityCritical, "§4.4.2"},
	{"DOC-012", "DocRefId reused but message is a correction of a superseded record", CategoryBusiness, SeverityWarning, "§4.4.2"},
	{"DOC-013", "Global DocRefId uniqueness check skipped", CategoryBusiness, SeverityInfo, "§4.4.2"},
}

// TIN rules (TIN-*), spec §4.4.3.
var tinRules = []Rule{
	{"TIN-001", "Reporting entity has no TIN", CategoryBusiness, SeverityCritical, "§4.4.3"},
	{"TIN-002", "TIN value empty", CategoryBusiness, SeverityError, "§4.4.3"},
	{"TIN-003", "TIN length out of range", CategoryBusiness, SeverityError, "§4.4.3"},
	{"TIN-004", "TIN is a repeated-character placeholder", CategoryBusiness, SeverityWarning, "§4.4.3"},
	{"TIN-005", "TIN matches known placeholder value", CategoryBusiness, SeverityError, "§4.4.3"},
	{"TIN-006", "TIN has leading or trailing whitespace", CategoryDataQuality, SeverityWarning, "§4.4.3"},
	{"TIN-007", "TIN is the NOTIN sentinel", CategoryBusiness, SeverityInfo, "§4.4.3"},
	{"TIN-008", "TIN missing IssuedBy attribute", CategoryBusiness, SeverityWarning, "§4.4.3"},
	{"TIN-009", "TIN IssuedBy is not a valid country code", CategoryBusiness, SeverityError, "§4.4.3"},
	{"TIN-010", "TIN does not match issuing country's expected pattern", CategoryBusiness, SeverityWarning, "§4.4.3"},
}

// Summary rules (SUM-*), spec §4.4.4.
var summaryRules = []Rule{
	{"SUM-001", "Revenue decomposition only partially present", CategoryBusiness, SeverityWarning, "§4.4.4"},
	{"SUM-002", "Total revenues does not equal unrelated plus related", CategoryBusiness, SeverityError, "§4.4.4"},
	{"SUM-003", "NumberOfEmployees negative or non-integer", CategoryBusiness, SeverityError, "§4.4.4"},
	{"SUM-004", "Monetary amount not finite or out of bounds", CategoryBusiness, SeverityCritical, "§4.4.4"},
	{"SUM-005", "Monetary amount must not be negative", CategoryBusiness, SeverityError, "§4.4.4"},
	{"SUM-006", "Monetary amount is negative", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-007", "Inconsistent currency within summary", CategoryBusiness, SeverityWarning, "§4.4.4"},
	{"SUM-008", "Monetary amount has unusual decimal precision", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-009", "Tax paid or accrued is a high share of profit", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-010", "Zero tax reported despite positive profit", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-011", "Simplified ETR below 0.1% despite positive profit", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-012", "TaxPaid and TaxAccrued diverge significantly", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-013", "Employees reported with zero revenue", CategoryDataQuality, SeverityWarning, "§4.4.4"},
	{"SUM-014", "Material revenue reported with zero employees", CategoryDataQuality, SeverityWarning, "§4.4.4"},
	{"SUM-015", "All summary fields are zero without dormant activity code", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-016", "Global total revenues below CbCR threshold", CategoryDataQuality, SeverityInfo, "§4.4.4"},
	{"SUM-017", "Single jurisdiction holds disproportionate profit share", CategoryDataQuality, SeverityInfo, "§4.4.4"},
}

// Business activity rules (BIZ-*), spec §4.4.5.
var businessActivityRules = []Rule{
	{"BIZ-001", "Invalid business activity code", CategorySchemaConformity, SeverityCritical, "§4.4.5"},
	{"BIZ-002", "No business activity reported for a populated jurisdiction", CategoryBusiness, SeverityWarning, "§4.4.5"},
	{"BIZ-003", "Duplicate business activity code", CategoryDataQuality, SeverityInfo, "§4.4.5"},
	{"BIZ-004", "Other business activity without explanation", CategoryDataQuality, SeverityInfo, "§4.4.5"},
	{"BIZ-005", "Dormant activity combined with non-zero financials", CategoryBusiness, SeverityWarning, "§4.4.5"},
	{"BIZ-006", "Dormant activity combined with an active activity code", CategoryBusiness, SeverityWarning, "§4.4.5"},
	{"BIZ-007", "Holding-only activity with disproportionate headcount or revenue", CategoryDataQuality, SeverityInfo, "§4.4.5"},
}

// Generic country-code rules (CC-*), applied wherever an ISO code appears.
var countryCodeRules = []Rule{
	{"CC-001", "Invalid ISO 3166-1 alpha-2 country code", CategorySchemaConformity, SeverityCritical, "§3"},
	{"CC-002", "Duplicate reporting jurisdiction (ResCountryCode) across CbcReports", CategorySchemaConformity, SeverityCritical, "§3"},
	{"CC-003", "Invalid incorporation country code", CategoryDataQuality, SeverityWarning, "§3"},
}

// Pillar Two rules (P2-*), spec §4.4.7.
var pillar2Rules = []Rule{
	{"P2-001", "Fiscal year outside the transitional safe-harbour window", CategoryPillar2, SeverityWarning, "§4.4.7"},
	{"P2-SH-PASS", "Jurisdiction qualifies for transitional CbCR safe harbour", CategoryPillar2, SeverityInfo, "§4.4.7"},
	{"P2-SH-FAIL", "Jurisdiction does not qualify for any transitional safe harbour test", CategoryPillar2, SeverityWarning, "§4.4.7"},
	{"P2-JUR-010", "Jurisdiction shows elevated estimated top-up tax risk", CategoryPillar2, SeverityWarning, "§4.4.7"},
	{"P2-JUR-011", "Jurisdiction shows low estimated top-up tax risk", CategoryPillar2, SeverityInfo, "§4.4.7"},
	{"P2-JUR-020", "Jurisdiction charging mechanism and ordering note", CategoryPillar2, SeverityInfo, "§4.4.7"},
}

// Luxembourg country-specific rules (LU-*), spec §4.4.6.
var luRules = []Rule{
	{"LU-001", "Invalid Luxembourg Matricule National TIN format", CategoryCountry, SeverityError, "§4.4.6"},
	{"LU-002", "TIN resembles a VAT number rather than a Matricule National", CategoryCountry, SeverityWarning, "§4.4.6"},
	{"LU-003", "CbCR filing deadline has passed", CategoryCountry, SeverityError, "§4.4.6"},
	{"LU-004", "CbCR filing deadline within 7 days", CategoryCountry, SeverityWarning, "§4.4.6"},
	{"LU-005", "CbCR filing deadline within 30 days", CategoryCountry, SeverityInfo, "§4.4.6"},
	{"LU-006", "Reporting currency is not EUR", CategoryCountry, SeverityInfo, "§4.4.6"},
	{"LU-007", "Luxembourg entity TIN not issued by LU", CategoryCountry, SeverityInfo, "§4.4.6"},
	{"LU-008", "Language code outside the accepted set", CategoryCountry, SeverityWarning, "§4.4.6"},
	{"LU-009", "Consolidated revenue below the CbCR threshold", CategoryCountry, SeverityInfo, "§4.4.6"},
	{"LU-010", "No Luxembourg CbcReport present though LU is the reporting jurisdiction", CategoryCountry, SeverityWarning, "§4.4.6"},
	{"LU-011", "Pillar Two mechanism not yet effective for this fiscal year", CategoryCountry, SeverityInfo, "§4.4.6"},
	{"LU-012", "Luxembourg safe-harbour eligibility note", CategoryCountry, SeverityInfo, "§4.4.6"},
}

// OECD "28 common errors" rules (CE-*), spec §4.4.8.
var commonErrorRules = []Rule{
	{"CE-001", "Missing TIN for an entity", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"CE-002", "Misuse of the NOTIN sentinel", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"CE-003", "Duplicate TIN reused across distinct entities", CategoryDataQuality, SeverityError, "§4.4.8"},
	{"CE-004", "Reporting jurisdiction absent from constituent entities", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"CE-005", "Reporting entity not present among constituent entities", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"CE-006", "Monetary field carries implausible decimal precision", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"CE-007", "Amount suggests unconverted thousands or millions", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"CE-008", "Revenue figures do not reconcile", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"CE-009", "Negative revenue reported", CategoryDataQuality, SeverityError, "§4.4.8"},
	{"CE-010", "Currency code inconsistent across the filing", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"CE-011", "Reporting period suspiciously close to submission", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"CE-012", "Accounting period exceeds twelve months", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"CE-013", "Other business activity code without supporting narrative", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"CE-014", "AdditionalInfo block present but empty", CategoryDataQuality, SeverityWarning, "§4.4.8"},
}

// Cross-field data-quality rules (XFV-*), spec §4.4.8.
var crossFieldRules = []Rule{
	{"XFV-001", "Revenue and employee counts are mutually implausible", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"XFV-002", "Holding activity reports unusually high tangible assets", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"XFV-003", "Manufacturing activity with implausible asset base", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"XFV-004", "Asset-intensive activity with zero tangible assets", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"XFV-005", "Possible unreported dividend income under holding/finance activity", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"XFV-006", "Currency inconsistent across the report", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"XFV-007", "Entity accounting period start is not before its end", CategoryDataQuality, SeverityError, "§4.4.8"},
	{"XFV-008", "Fiscal year length outside the plausible range", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"XFV-009", "MessageRefId and DocRefId country-code prefixes disagree", CategoryDataQuality, SeverityWarning, "§4.4.8"},
}

// Completeness rules (ENC-*), spec §4.4.8.
var completenessRules = []Rule{
	{"ENC-001", "Required summary field missing", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"ENC-002", "Revenue decomposition present for only one of related/unrelated", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"ENC-003", "Constituent entity has no name", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"ENC-004", "Reporting entity not found among constituent entities by TIN or name", CategoryDataQuality, SeverityWarning, "§4.4.8"},
	{"ENC-005", "Reporting entity found outside its home jurisdiction", CategoryDataQuality, SeverityInfo, "§4.4.8"},
	{"ENC-006", "AdditionalInfo text too short to be meaningful", CategoryDataQuality, SeverityInfo, "§4.4.8"},
}

// Application/infrastructure rules (APP-*).
var appRules = []Rule{
	{"APP-001", "Unclassified internal finding", CategoryBusiness, SeverityInfo, "§7"},
	{"APP-005", "Validator failed unexpectedly", CategoryBusiness, SeverityCritical, "§4.3"},
	{"APP-007", "ReportingPeriod is in the future", CategoryBusiness, SeverityWarning, "§4.4.1"},
}
