package cbcrval

import (
	"strings"

	"github.com/oecdtools/cbcrval/refdata"
)

// suggestionTemplates maps a rule-id prefix to a generic remediation hint
// used when a validator does not supply its own suggestion. Looked up by
// Build via suggestionFor; no prefix is a prefix of another, so at most
// one entry matches a rule id.
var suggestionTemplates = map[string]string{
	"MSG-": "Review the MessageSpec block against the OECD CbC XML Schema v2.0 message-header rules.",
	"DOC-": "Review the affected DocSpec block's identifiers and correction-chain references.",
	"TIN-": "Verify the reported TIN against the issuing jurisdiction's expected format.",
	"BIZ-": "Review the reported business activity codes for the affected jurisdiction.",
	"SUM-": "Recompute the jurisdiction's Table 1 summary from the underlying constituent-entity data.",
	"XFV-": "Cross-check the flagged fields for internal consistency before resubmitting.",
	"ENC-": "Complete the missing or incomplete field before resubmitting.",
	"CC-":  "Confirm the reported code against the ISO 3166-1 alpha-2 country list.",
	"P2-":  "Treat this as an approximate Pillar Two readiness signal, not a filed GloBE computation.",
	"LU-":  "Review against the Luxembourg CbCR filing guidance in force for the fiscal year.",
	"CE-":  "This matches one of the OECD's commonly observed CbCR filing errors; see the OECD guidance for remediation.",
	"APP-": "This is an internal validator condition; consult the validator id named in the finding.",
}

// suggestionFor derives a generic remediation hint from a rule id's
// prefix. Returns "" when no prefix matches.
func suggestionFor(ruleID string) string {
	for prefix, text := range suggestionTemplates {
		if strings.HasPrefix(ruleID, prefix) {
			return text
		}
	}
	return ""
}

// FindingBuilder is a fluent, single-use factory for a Finding. Create
// one with NewFinding, chain setters, and call Build to obtain the
// immutable result. A builder performs no I/O and never panics; absent
// metadata degrades to defaults rather than failing.
type FindingBuilder struct {
	f Finding

	severitySet bool
	categorySet bool
}

// NewFinding starts a builder for ruleID, pre-filling category, default
// severity, and specification reference from the rule registry when the
// id is known.
func NewFinding(ruleID string) *FindingBuilder {
	b := &FindingBuilder{f: Finding{RuleID: ruleID}}
	if rule, ok := refdata.RuleByID(ruleID); ok {
		b.f.Category = rule.Category
		b.f.Severity = rule.DefaultSeverity
		b.f.Reference = rule.Reference
	} else {
		b.f.Category = refdata.CategoryBusiness
		b.f.Severity = refdata.SeverityInfo
	}
	return b
}

// Severity overrides the rule's default severity.
func (b *FindingBuilder) Severity(s refdata.Severity) *FindingBuilder {
	b.f.Severity = s
	b.severitySet = true
	return b
}

// Category overrides the rule's default category.
func (b *FindingBuilder) Category(c refdata.Category) *FindingBuilder {
	b.f.Category = c
	b.categorySet = true
	return b
}

// Message sets the human-readable description.
func (b *FindingBuilder) Message(msg string) *FindingBuilder {
	b.f.Message = msg
	return b
}

// XPath sets the canonical location of the offending element.
func (b *FindingBuilder) XPath(xpath string) *FindingBuilder {
	b.f.XPath = xpath
	return b
}

// Detail adds one key/value to the finding's details map, creating the
// map on first use.
func (b *FindingBuilder) Detail(key, value string) *FindingBuilder {
	if b.f.Details == nil {
		b.f.Details = make(map[string]string)
	}
	b.f.Details[key] = value
	return b
}

// Suggestion overrides the derived remediation hint.
func (b *FindingBuilder) Suggestion(s string) *FindingBuilder {
	b.f.Suggestion = s
	return b
}

// Reference overrides the rule registry's specification reference.
func (b *FindingBuilder) Reference(ref string) *FindingBuilder {
	b.f.Reference = ref
	return b
}

// OECDErrorCode attaches a numeric OECD file- or record-level error code
// (50000-59999 or 80000-89999) and, if the code is known, borrows its
// remediation text as the suggestion unless one was already set.
func (b *FindingBuilder) OECDErrorCode(code string) *FindingBuilder {
	b.f.OECDErrorCode = code
	if ec, ok := refdata.ErrorCodeByCode(code); ok && b.f.Suggestion == "" {
		b.f.Suggestion = ec.Remediation
	}
	return b
}

// FieldName names the specific field the finding is about.
func (b *FindingBuilder) FieldName(name string) *FindingBuilder {
	b.f.FieldName = name
	return b
}

// Actual records the value that was found.
func (b *FindingBuilder) Actual(value string) *FindingBuilder {
	b.f.ActualValue = value
	return b
}

// Expected records the value that was expected.
func (b *FindingBuilder) Expected(value string) *FindingBuilder {
	b.f.ExpectedValue = value
	return b
}

// Build finalizes the finding: a missing message degrades to a
// placeholder (never empty) and a missing suggestion is derived from the
// rule-id prefix.
func (b *FindingBuilder) Build() Finding {
	if b.f.Message == "" {
		b.f.Message = "no message supplied for rule " + b.f.RuleID
	}
	if b.f.Suggestion == "" {
		b.f.Suggestion = suggestionFor(b.f.RuleID)
	}
	return b.f
}
