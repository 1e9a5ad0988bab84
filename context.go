package cbcrval

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

// EntityRef is a precomputed cross-reference to one constituent entity:
// which report it belongs to, its jurisdiction, and a normalized name/TIN
// view used for entity-lookup and common-error checks.
type EntityRef struct {
	Entity         *ConstituentEntity
	OwningDocRefId string
	Jurisdiction   string
	NormalizedName string
	TINs           []string // upper-cased values only
	ReportIndex    int
	EntityIndex    int
}

// JurisdictionTotals is the precomputed aggregate for one CbcReport.
type JurisdictionTotals struct {
	Report              *CbcReport
	Code                string
	Index               int
	TotalRevenues       decimal.Decimal
	UnrelatedRevenues   decimal.Decimal
	HasUnrelated        bool
	RelatedRevenues     decimal.Decimal
	HasRelated          bool
	ProfitOrLoss        decimal.Decimal
	TaxPaid             decimal.Decimal
	TaxAccrued          decimal.Decimal
	Employees           decimal.Decimal
	TangibleAssets      decimal.Decimal
	Capital             decimal.Decimal
	AccumulatedEarnings decimal.Decimal
	Currency            string
}

// GlobalTotals sums JurisdictionTotals across every reported jurisdiction.
type GlobalTotals struct {
	TotalRevenues  decimal.Decimal
	ProfitOrLoss   decimal.Decimal
	TaxPaid        decimal.Decimal
	TaxAccrued     decimal.Decimal
	Employees      decimal.Decimal
	TangibleAssets decimal.Decimal
}

// AnalysisContext is the single mutable aggregator a validation run
// builds against. It is constructed once from a ParsedReport and a set
// of Options, populated by the engine's hydration pass, then mutated
// only through its own methods by the validators the engine drives.
// Outside of bounded-parallel mode (see the engine), it has exactly one
// writer.
type AnalysisContext struct {
	Report  *ParsedReport
	Options Options

	seenDocRefIds     map[string]string // docRefId -> first-seen xpath
	seenMessageRefIds map[string]bool

	EntityRefs       []EntityRef
	JurisdictionRefs map[string]*JurisdictionTotals
	jurisdictionOrder []string

	findings    []Finding
	shouldStop  bool
	DocRefStore DocRefIdStore

	ranCategories map[refdata.Category]bool
	phaseElapsed  map[string]time.Duration
}

// NewAnalysisContext walks the report's CbcBody, populating the
// jurisdiction and entity tables in report order. Entity names are
// lowercased and trimmed for comparison; TINs are upper-cased.
func NewAnalysisContext(report *ParsedReport, opts Options) *AnalysisContext {
	ctx := &AnalysisContext{
		Report:            report,
		Options:           opts,
		seenDocRefIds:     make(map[string]string),
		seenMessageRefIds: make(map[string]bool),
		JurisdictionRefs:  make(map[string]*JurisdictionTotals),
		ranCategories:     make(map[refdata.Category]bool),
		phaseElapsed:      make(map[string]time.Duration),
	}

	for ri := range report.Message.CbcBody.CbcReports {
		cr := &report.Message.CbcBody.CbcReports[ri]
		jt := &JurisdictionTotals{
			Report:              cr,
			Code:                cr.ResCountryCode,
			Index:               ri,
			TotalRevenues:       cr.Summary.TotalRevenues.Value,
			ProfitOrLoss:        cr.Summary.ProfitOrLoss.Value,
			TaxPaid:             cr.Summary.TaxPaid.Value,
			TaxAccrued:          cr.Summary.TaxAccrued.Value,
			Employees:           cr.Summary.NumberOfEmployees,
			TangibleAssets:      cr.Summary.TangibleAssets.Value,
			Capital:             cr.Summary.Capital.Value,
			AccumulatedEarnings: cr.Summary.AccumulatedEarnings.Value,
			Currency:            cr.Summary.TotalRevenues.Currency,
		}
		if cr.Summary.UnrelatedRevenues != nil {
			jt.UnrelatedRevenues = cr.Summary.UnrelatedRevenues.Value
			jt.HasUnrelated = true
		}
		if cr.Summary.RelatedRevenues != nil {
			jt.RelatedRevenues = cr.Summary.RelatedRevenues.Value
			jt.HasRelated = true
		}
		ctx.JurisdictionRefs[cr.ResCountryCode] = jt
		ctx.jurisdictionOrder = append(ctx.jurisdictionOrder, cr.ResCountryCode)

		for ei := range cr.ConstEntities {
			ce := &cr.ConstEntities[ei]
			ref := EntityRef{
				Entity:         ce,
				OwningDocRefId: cr.DocSpec.DocRefId,
				Jurisdiction:   cr.ResCountryCode,
				ReportIndex:    ri,
				EntityIndex:    ei,
			}
			if len(ce.Names) > 0 {
				ref.NormalizedName = strings.ToLower(strings.TrimSpace(ce.Names[0]))
			}
			for _, t := range ce.TINs {
				ref.TINs = append(ref.TINs, strings.ToUpper(strings.TrimSpace(t.Value)))
			}
			ctx.EntityRefs = append(ctx.EntityRefs, ref)
		}
	}

	return ctx
}

// RegisterDocRefId records id as seen at xpath on first sight. It
// returns false if id was already recorded, in which case the caller
// should look up the first occurrence via FirstSeenDocRefId.
func (ctx *AnalysisContext) RegisterDocRefId(id, xpath string) bool {
	if _, ok := ctx.seenDocRefIds[id]; ok {
		return false
	}
	ctx.seenDocRefIds[id] = xpath
	return true
}

// FirstSeenDocRefId returns the xpath at which id was first registered.
func (ctx *AnalysisContext) FirstSeenDocRefId(id string) (string, bool) {
	xpath, ok := ctx.seenDocRefIds[id]
	return xpath, ok
}

// RegisterMessageRefId records id as seen.
func (ctx *AnalysisContext) RegisterMessageRefId(id string) {
	ctx.seenMessageRefIds[id] = true
}

// HasMessageRefId reports whether id has been registered.
func (ctx *AnalysisContext) HasMessageRefId(id string) bool {
	return ctx.seenMessageRefIds[id]
}

// ShouldStop reports whether fail-fast or max-issues has latched; the
// engine consults this between validators and between phases.
func (ctx *AnalysisContext) ShouldStop() bool {
	return ctx.shouldStop
}

// AddFinding applies the full accumulation policy from spec §4.2 before
// appending f to the findings list: drop-if-stopped, skip-set, min
// severity, category filter, strict-mode promotion, then the fail-fast
// and max-issues latches.
func (ctx *AnalysisContext) AddFinding(f Finding) {
	if ctx.shouldStop {
		return
	}

	for _, skip := range ctx.Options.SkipRules {
		if skip == f.RuleID {
			return
		}
	}

	if ctx.Options.MinSeverity != "" {
		min := refdata.Severity(ctx.Options.MinSeverity)
		if min.Valid() && f.Severity.Less(min) {
			return
		}
	}

	if len(ctx.Options.Categories) > 0 {
		allowed := false
		for _, c := range ctx.Options.Categories {
			if refdata.Category(c) == f.Category {
				allowed = true
				break
			}
		}
		if !allowed {
			return
		}
	}

	if ctx.Options.TestMode && ctx.IsTestSubmission() && f.Severity != refdata.SeverityCritical {
		f.Severity = refdata.SeverityInfo
		if f.Details == nil {
			f.Details = make(map[string]string)
		}
		f.Details["testSubmission"] = "severity downgraded: OECD10-OECD13 test filing"
	}

	if ctx.Options.StrictMode && f.Severity == refdata.SeverityWarning {
		f.Severity = refdata.SeverityError
	}

	ctx.findings = append(ctx.findings, f)

	if ctx.Options.FailFast && f.Severity == refdata.SeverityCritical {
		ctx.shouldStop = true
	}
	if ctx.Options.MaxIssues > 0 && len(ctx.findings) >= ctx.Options.MaxIssues {
		ctx.shouldStop = true
	}
}

// Findings returns every finding accumulated so far, in accumulation
// order (the engine sorts and dedupes this at finalization).
func (ctx *AnalysisContext) Findings() []Finding {
	return ctx.findings
}

// FindingsBySeverity returns the subset of findings at exactly severity s.
func (ctx *AnalysisContext) FindingsBySeverity(s refdata.Severity) []Finding {
	var out []Finding
	for _, f := range ctx.findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// FindingsByCategory returns the subset of findings in category c.
func (ctx *AnalysisContext) FindingsByCategory(c refdata.Category) []Finding {
	var out []Finding
	for _, f := range ctx.findings {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// HasCritical reports whether any finding so far is critical.
func (ctx *AnalysisContext) HasCritical() bool {
	for _, f := range ctx.findings {
		if f.Severity == refdata.SeverityCritical {
			return true
		}
	}
	return false
}

// JurisdictionByCode looks up the precomputed aggregate for a jurisdiction.
func (ctx *AnalysisContext) JurisdictionByCode(code string) (*JurisdictionTotals, bool) {
	jt, ok := ctx.JurisdictionRefs[code]
	return jt, ok
}

// Jurisdictions returns the jurisdiction aggregates in report order,
// restricted to Options.Jurisdictions when that filter is non-empty.
func (ctx *AnalysisContext) Jurisdictions() []*JurisdictionTotals {
	allowed := ctx.jurisdictionFilter()
	out := make([]*JurisdictionTotals, 0, len(ctx.jurisdictionOrder))
	for _, code := range ctx.jurisdictionOrder {
		if allowed != nil && !allowed[code] {
			continue
		}
		out = append(out, ctx.JurisdictionRefs[code])
	}
	return out
}

// jurisdictionFilter returns Options.Jurisdictions as a lookup set, or
// nil when the filter is empty (meaning "all jurisdictions").
func (ctx *AnalysisContext) jurisdictionFilter() map[string]bool {
	if len(ctx.Options.Jurisdictions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ctx.Options.Jurisdictions))
	for _, code := range ctx.Options.Jurisdictions {
		set[code] = true
	}
	return set
}

// EntitiesByTIN returns every entity reference whose TIN list contains
// the given value, which is trimmed and upper-cased before comparison.
func (ctx *AnalysisContext) EntitiesByTIN(tin string) []EntityRef {
	tin = strings.ToUpper(strings.TrimSpace(tin))
	var out []EntityRef
	for _, ref := range ctx.EntityRefs {
		for _, t := range ref.TINs {
			if t == tin {
				out = append(out, ref)
				break
			}
		}
	}
	return out
}

// EntitiesByNameSubstring returns every entity reference whose
// normalized name contains substr (case-insensitive, already normalized).
func (ctx *AnalysisContext) EntitiesByNameSubstring(substr string) []EntityRef {
	substr = strings.ToLower(strings.TrimSpace(substr))
	var out []EntityRef
	for _, ref := range ctx.EntityRefs {
		if strings.Contains(ref.NormalizedName, substr) {
			out = append(out, ref)
		}
	}
	return out
}

// GlobalTotals sums every jurisdiction's aggregate, restricted to
// Options.Jurisdictions when that filter is non-empty.
func (ctx *AnalysisContext) GlobalTotals() GlobalTotals {
	allowed := ctx.jurisdictionFilter()
	var g GlobalTotals
	for code, jt := range ctx.JurisdictionRefs {
		if allowed != nil && !allowed[code] {
			continue
		}
		g.TotalRevenues = g.TotalRevenues.Add(jt.TotalRevenues)
		g.ProfitOrLoss = g.ProfitOrLoss.Add(jt.ProfitOrLoss)
		g.TaxPaid = g.TaxPaid.Add(jt.TaxPaid)
		g.TaxAccrued = g.TaxAccrued.Add(jt.TaxAccrued)
		g.Employees = g.Employees.Add(jt.Employees)
		g.TangibleAssets = g.TangibleAssets.Add(jt.TangibleAssets)
	}
	return g
}

// IsCorrection reports whether this message is a CBC702 correction.
func (ctx *AnalysisContext) IsCorrection() bool {
	return ctx.Report.Message.MessageSpec.MessageTypeIndic.IsCorrection()
}

// IsTestSubmission reports whether the reporting entity's DocSpec uses
// one of the OECD10-OECD13 test-mode indicators.
func (ctx *AnalysisContext) IsTestSubmission() bool {
	return ctx.Report.Message.CbcBody.ReportingEntity.DocSpec.DocTypeIndic.IsTest()
}

// markCategoryRan records that at least one validator in category c was
// selected to run this phase, regardless of whether it produced any
// findings. The engine calls this once per phase, before dispatching
// the phase's selected validators.
func (ctx *AnalysisContext) markCategoryRan(c refdata.Category) {
	ctx.ranCategories[c] = true
}

// categoryRan reports whether markCategoryRan(c) was ever called during
// this run.
func (ctx *AnalysisContext) categoryRan(c refdata.Category) bool {
	return ctx.ranCategories[c]
}

// addPhaseTiming accumulates d into phase's running total. Only called
// when Options.TrackTiming is set.
func (ctx *AnalysisContext) addPhaseTiming(phase string, d time.Duration) {
	ctx.phaseElapsed[phase] += d
}

// PhaseTimings returns the accumulated wall-clock duration spent inside
// each phase's validators, keyed by phase name ("schema",
// "business_rules", ...). Empty unless Options.TrackTiming is set.
func (ctx *AnalysisContext) PhaseTimings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(ctx.phaseElapsed))
	for k, v := range ctx.phaseElapsed {
		out[k] = v
	}
	return out
}
