package cbcrval

import (
	"fmt"
	"time"

	"github.com/oecdtools/cbcrval/refdata"
)

// ValidatorMetadata is the static description of one validator: its
// identity, which phase/category it belongs to, its run order within
// that phase, and an optional country restriction.
type ValidatorMetadata struct {
	ID                  string
	Name                string
	Description         string
	Category            refdata.Category
	Order               int
	ApplicableCountries []string // empty means "all countries"
	Enabled             bool
}

// Validator is the unit of work the engine drives: a value exposing its
// own metadata and a pure function from context to findings. There is no
// base class to extend; shared behavior lives in the free-standing
// helpers below (xpath construction, report/entity iteration, primitive
// checks) plus the FindingBuilder.
type Validator interface {
	Metadata() ValidatorMetadata
	Validate(ctx *AnalysisContext) []Finding
}

// Applicable reports whether v should run against ctx, per spec §4.3:
// enabled, and (no country restriction or the primary country matches),
// and (no category filter configured or the validator's category is in
// it).
func Applicable(v Validator, ctx *AnalysisContext) bool {
	meta := v.Metadata()
	if !meta.Enabled {
		return false
	}
	if len(meta.ApplicableCountries) > 0 {
		matched := false
		for _, c := range meta.ApplicableCountries {
			if c == ctx.Options.Country {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(ctx.Options.Categories) > 0 {
		matched := false
		for _, c := range ctx.Options.Categories {
			if refdata.Category(c) == meta.Category {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// ExecutionRecord is what the engine collects after driving one
// validator: its findings plus timing and failure information.
type ExecutionRecord struct {
	ValidatorID string
	Findings    []Finding
	ElapsedMs   int64
	OK          bool
	Error       error
}

// Execute runs v.Validate(ctx) inside a guarded scope. Any panic is
// recovered and turned into a single APP-005 critical finding carrying
// the validator id and the recovered value; Execute never panics and
// never lets a validator abort the pipeline.
func Execute(v Validator, ctx *AnalysisContext) ExecutionRecord {
	meta := v.Metadata()
	rec := ExecutionRecord{ValidatorID: meta.ID, OK: true}
	started := time.Now()

	func() {
		defer func() {
			if r := recover(); r != nil {
				rec.OK = false
				rec.Error = fmt.Errorf("validator %s panicked: %v", meta.ID, r)
				rec.Findings = []Finding{
					NewFinding("APP-005").
						Message(fmt.Sprintf("validator %q failed unexpectedly: %v", meta.ID, r)).
						Detail("validatorId", meta.ID).
						Build(),
				}
			}
		}()
		rec.Findings = v.Validate(ctx)
	}()

	rec.ElapsedMs = time.Since(started).Milliseconds()
	return rec
}

// --- XPath constructors -----------------------------------------------

// XPathMessageSpec is the canonical location of the MessageSpec block.
func XPathMessageSpec() string {
	return "/CBC_OECD/MessageSpec"
}

// XPathMessageSpecField locates a single MessageSpec child element.
func XPathMessageSpecField(field string) string {
	return fmt.Sprintf("/CBC_OECD/MessageSpec/%s", field)
}

// XPathReportingEntity is the canonical location of the reporting entity.
func XPathReportingEntity() string {
	return "/CBC_OECD/CbcBody/ReportingEntity"
}

// XPathReportingEntityDocSpec locates the reporting entity's DocSpec.
func XPathReportingEntityDocSpec() string {
	return "/CBC_OECD/CbcBody/ReportingEntity/DocSpec"
}

// XPathCbcReport locates the i-th (0-based) CbcReport.
func XPathCbcReport(i int) string {
	return fmt.Sprintf("/CBC_OECD/CbcBody/CbcReports[%d]", i+1)
}

// XPathCbcReportField locates a field within the i-th CbcReport.
func XPathCbcReportField(i int, field string) string {
	return fmt.Sprintf("/CBC_OECD/CbcBody/CbcReports[%d]/%s", i+1, field)
}

// XPathCbcReportDocSpec locates the i-th CbcReport's DocSpec.
func XPathCbcReportDocSpec(i int) string {
	return XPathCbcReportField(i, "DocSpec")
}

// XPathSummary locates the i-th CbcReport's Summary.
func XPathSummary(i int) string {
	return XPathCbcReportField(i, "Summary")
}

// XPathSummaryField locates a field within the i-th CbcReport's Summary.
func XPathSummaryField(i int, field string) string {
	return fmt.Sprintf("/CBC_OECD/CbcBody/CbcReports[%d]/Summary/%s", i+1, field)
}

// XPathConstEntity locates the j-th constituent entity of the i-th
// CbcReport.
func XPathConstEntity(i, j int) string {
	return fmt.Sprintf("/CBC_OECD/CbcBody/CbcReports[%d]/ConstEntities[%d]", i+1, j+1)
}

// XPathAdditionalInfo locates the k-th AdditionalInfo block.
func XPathAdditionalInfo(k int) string {
	return fmt.Sprintf("/CBC_OECD/CbcBody/AdditionalInfo[%d]", k+1)
}

// --- Iteration helpers --------------------------------------------------

// ReportIter is one (index, *CbcReport) pair yielded while iterating the
// parsed report's CbcReports in order.
type ReportIter struct {
	Index  int
	Report *CbcReport
}

// IterateReports returns every CbcReport with its index, for canonical
// xpath construction in validators that walk reports directly rather
// than through the precomputed jurisdiction table.
func IterateReports(report *ParsedReport) []ReportIter {
	out := make([]ReportIter, 0, len(report.Message.CbcBody.CbcReports))
	for i := range report.Message.CbcBody.CbcReports {
		out = append(out, ReportIter{Index: i, Report: &report.Message.CbcBody.CbcReports[i]})
	}
	return out
}

// EntityIter is one (reportIndex, entityIndex, *ConstituentEntity) triple
// yielded while iterating every entity of every report in order.
type EntityIter struct {
	ReportIndex int
	EntityIndex int
	Report      *CbcReport
	Entity      *ConstituentEntity
}

// IterateEntities returns every constituent entity across every report,
// carrying both indices needed to build a canonical xpath.
func IterateEntities(report *ParsedReport) []EntityIter {
	var out []EntityIter
	for ri := range report.Message.CbcBody.CbcReports {
		cr := &report.Message.CbcBody.CbcReports[ri]
		for ei := range cr.ConstEntities {
			out = append(out, EntityIter{
				ReportIndex: ri,
				EntityIndex: ei,
				Report:      cr,
				Entity:      &cr.ConstEntities[ei],
			})
		}
	}
	return out
}

// --- Primitive checks ----------------------------------------------------

// IsBlank reports whether s is empty once leading/trailing whitespace is
// trimmed.
func IsBlank(s string) bool {
	return len(trimSpace(s)) == 0
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpaceByte(s[start]) {
		start++
	}
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// IsValidDate reports whether s parses as YYYY-MM-DD.
func IsValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsFutureDate reports whether s (YYYY-MM-DD) names a date strictly
// after today.
func IsFutureDate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return false
	}
	return t.After(time.Now())
}

// isoTimestampLayouts are the four ISO 8601 variants MessageSpec's
// Timestamp field accepts, per spec §4.4.1.
var isoTimestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
}

// IsValidTimestamp reports whether s matches one of the accepted ISO
// 8601 timestamp variants.
func IsValidTimestamp(s string) bool {
	for _, layout := range isoTimestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
