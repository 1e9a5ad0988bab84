package cbcrval

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oecdtools/cbcrval/refdata"
)

// phaseOrder is the fixed sequence the engine drives validator phases
// in, per spec §4.4.9. "parsing" is represented for timing and progress
// symmetry only: XML well-formedness is delegated to the external
// deserializer, so no validator is registered under that category
// today, but a caller's own pre-parse hook can still register one.
var phaseOrder = []struct {
	name     string
	category refdata.Category
}{
	{"parsing", refdata.CategoryXMLWellformedness},
	{"schema", refdata.CategorySchemaConformity},
	{"business_rules", refdata.CategoryBusiness},
	{"country_rules", refdata.CategoryCountry},
	{"data_quality", refdata.CategoryDataQuality},
	{"pillar2", refdata.CategoryPillar2},
}

// CancelToken is an opaque cancellation signal the engine polls between
// validators and between phases. The zero value is a token that never
// trips.
type CancelToken struct {
	tripped atomic.Bool
}

// Cancel trips the token; safe to call from any goroutine, any number of
// times.
func (t *CancelToken) Cancel() {
	if t != nil {
		t.tripped.Store(true)
	}
}

// Cancelled reports whether the token has tripped.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.tripped.Load()
}

// ProgressEvent is fired at the start of each phase and once more at
// engine completion.
type ProgressEvent struct {
	Phase      string
	Percentage float64 // phaseIndex / totalPhases, 1.0 on completion
	Done       bool
}

// ValidationRequest bundles a parsed report with the run-level metadata
// the external upload/CLI layer supplies; only Report and Options affect
// validation outcome, the rest is carried through to ValidationReport
// unchanged.
type ValidationRequest struct {
	Report     *ParsedReport
	Options    Options
	ID         string
	Filename   string
	FileSize   int64
	UploadedAt time.Time
	Cancel     *CancelToken
	Progress   func(ProgressEvent)
}

// FindingCounts tallies findings by severity.
type FindingCounts struct {
	Critical int
	Errors   int
	Warnings int
	Info     int
	Passed   int // distinct applicable rule ids with zero findings; only populated when Options.IncludePassedRules is set
	Total    int
}

// ReportMetadata carries run-level information that is not itself a
// finding: the per-phase timing breakdown captured when
// Options.TrackTiming is set. Empty (zero-value) otherwise.
type ReportMetadata struct {
	PhaseTimingsMs map[string]int64
}

// ValidationReport is the engine's output, per spec §6.
type ValidationReport struct {
	ID                string
	Filename          string
	FileSize          int64
	UploadedAt        time.Time
	StartedAt         time.Time
	CompletedAt       time.Time
	DurationMs        int64
	Status            string // "completed", "cancelled", "failed"
	IsValid           bool
	FiscalYear        int
	UPEJurisdiction   string
	UPEName           string
	MessageRefId      string
	JurisdictionCount int
	EntityCount       int
	Summary           FindingCounts
	ByCategory        map[refdata.Category]int
	Results           []Finding
	Metadata          ReportMetadata
}

// Engine orchestrates an ordered, pluggable collection of validators
// across the fixed phase sequence. It holds no per-run state; it is
// cheap to construct and safe to reuse across concurrent validation
// runs, since each run builds its own AnalysisContext.
type Engine struct {
	Registry []Validator
}

// NewEngine builds an engine around an explicit, already-ordered
// validator registry. Use DefaultEngine for the full rule set this
// module implements.
func NewEngine(registry []Validator) *Engine {
	return &Engine{Registry: registry}
}

// DefaultEngine returns an engine registered with every validator this
// module implements, ordered by (phase, Metadata().Order).
func DefaultEngine() *Engine {
	registry := []Validator{
		CountryCodeValidator{},
		MessageSpecValidator{},
		DocSpecValidator{},
		TINValidator{},
		SummaryValidator{},
		BusinessActivityValidator{},
		LuxembourgCountryValidator{},
		CompletenessValidator{},
		ConsistencyValidator{},
		CrossFieldValidator{},
		CommonErrorsValidator{},
		Pillar2Validator{},
	}
	sort.SliceStable(registry, func(i, j int) bool {
		return registry[i].Metadata().Order < registry[j].Metadata().Order
	})
	return NewEngine(registry)
}

// Validate runs req.Report through every applicable, enabled validator
// in phase order, accumulating findings into a fresh AnalysisContext,
// then finalizes into a ValidationReport: deduplicated, stably sorted,
// and summarized.
func (e *Engine) Validate(req ValidationRequest) ValidationReport {
	opts := req.Options
	if opts.Country == "" {
		opts = DefaultOptions()
		opts.FiscalYear = req.Options.FiscalYear
	}

	ctx := NewAnalysisContext(req.Report, opts)
	if ctx.Options.CheckGlobalDocRefIds && ctx.DocRefStore == nil {
		ctx.DocRefStore = NoopDocRefIdStore{}
	}

	started := time.Now()
	status := "completed"

	totalPhases := len(phaseOrder)
	for phaseIndex, phase := range phaseOrder {
		if req.Cancel.Cancelled() {
			status = "cancelled"
			break
		}
		if phase.name == "pillar2" && !ctx.Options.CheckPillar2 {
			continue
		}

		fireProgress(req.Progress, ProgressEvent{
			Phase:      phase.name,
			Percentage: float64(phaseIndex) / float64(totalPhases),
		})

		e.runPhase(ctx, phase.category, phase.name, req.Cancel)

		if ctx.ShouldStop() {
			break
		}
		if req.Cancel.Cancelled() {
			status = "cancelled"
			break
		}
	}

	findings := finalizeFindings(ctx.Findings())
	report := buildReport(req, ctx, findings, started, status)

	fireProgress(req.Progress, ProgressEvent{Phase: "done", Percentage: 1.0, Done: true})
	return report
}

func fireProgress(cb func(ProgressEvent), ev ProgressEvent) {
	if cb != nil {
		cb(ev)
	}
}

// runPhase selects the validators whose category matches phase and runs
// them either sequentially (default) or, when Options.MaxParallel > 1,
// with at most that many running concurrently. AnalysisContext's
// mutating methods are the only shared state; they are serialized with
// a mutex in parallel mode per spec §5.
func (e *Engine) runPhase(ctx *AnalysisContext, category refdata.Category, phaseName string, cancel *CancelToken) {
	var selected []Validator
	for _, v := range e.Registry {
		if v.Metadata().Category != category {
			continue
		}
		if !Applicable(v, ctx) {
			continue
		}
		selected = append(selected, v)
	}
	if len(selected) > 0 {
		ctx.markCategoryRan(category)
	}

	if ctx.Options.MaxParallel <= 1 {
		for _, v := range selected {
			if ctx.ShouldStop() || cancel.Cancelled() {
				return
			}
			rec := Execute(v, ctx)
			for _, f := range rec.Findings {
				ctx.AddFinding(f)
			}
			if ctx.Options.TrackTiming {
				ctx.addPhaseTiming(phaseName, time.Duration(rec.ElapsedMs)*time.Millisecond)
			}
		}
		return
	}

	e.runPhaseParallel(ctx, selected, phaseName, cancel)
}

func (e *Engine) runPhaseParallel(ctx *AnalysisContext, selected []Validator, phaseName string, cancel *CancelToken) {
	sem := make(chan struct{}, ctx.Options.MaxParallel)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, v := range selected {
		if ctx.ShouldStop() || cancel.Cancelled() {
			break
		}
		v := v
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			rec := Execute(v, ctx)
			mu.Lock()
			for _, f := range rec.Findings {
				ctx.AddFinding(f)
			}
			if ctx.Options.TrackTiming {
				ctx.addPhaseTiming(phaseName, time.Duration(rec.ElapsedMs)*time.Millisecond)
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
}

// finalizeFindings deduplicates by (ruleId, xpath, message) and stably
// sorts by severity descending, then ruleId, xpath, message ascending
// for determinism across sequential and bounded-parallel runs.
func finalizeFindings(in []Finding) []Finding {
	type key struct{ rule, xpath, message string }
	seen := make(map[key]bool, len(in))
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		k := key{f.RuleID, f.XPath, f.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity != b.Severity {
			// Descending severity: a sorts first iff b is strictly less severe than a.
			return b.Severity.Less(a.Severity)
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.XPath != b.XPath {
			return a.XPath < b.XPath
		}
		return a.Message < b.Message
	})
	return out
}

func buildReport(req ValidationRequest, ctx *AnalysisContext, findings []Finding, started time.Time, status string) ValidationReport {
	completed := time.Now()

	counts := FindingCounts{Total: len(findings)}
	byCategory := make(map[refdata.Category]int)
	for _, f := range findings {
		switch f.Severity {
		case refdata.SeverityCritical:
			counts.Critical++
		case refdata.SeverityError:
			counts.Errors++
		case refdata.SeverityWarning:
			counts.Warnings++
		case refdata.SeverityInfo:
			counts.Info++
		}
		byCategory[f.Category]++
	}
	if ctx.Options.IncludePassedRules {
		counts.Passed = countPassedRules(ctx, findings)
	}

	var meta ReportMetadata
	if ctx.Options.TrackTiming {
		meta.PhaseTimingsMs = make(map[string]int64, len(ctx.phaseElapsed))
		for phase, d := range ctx.PhaseTimings() {
			meta.PhaseTimingsMs[phase] = d.Milliseconds()
		}
	}

	ms := req.Report.Message.MessageSpec
	re := req.Report.Message.CbcBody.ReportingEntity
	upeName := ""
	if len(re.Names) > 0 {
		upeName = re.Names[0]
	}

	return ValidationReport{
		ID:                req.ID,
		Filename:          req.Filename,
		FileSize:          req.FileSize,
		UploadedAt:        req.UploadedAt,
		StartedAt:         started,
		CompletedAt:       completed,
		DurationMs:        completed.Sub(started).Milliseconds(),
		Status:            status,
		IsValid:           counts.Critical == 0,
		FiscalYear:        ctx.Options.FiscalYear,
		UPEJurisdiction:   ctx.Options.Country,
		UPEName:           upeName,
		MessageRefId:      ms.MessageRefId,
		JurisdictionCount: len(ctx.JurisdictionRefs),
		EntityCount:       len(ctx.EntityRefs),
		Summary:           counts,
		ByCategory:        byCategory,
		Results:           findings,
		Metadata:          meta,
	}
}

// countPassedRules counts distinct registered rule ids whose category
// actually ran during this validation (markCategoryRan was called for
// it) and which produced zero findings. Category, not per-validator
// rule-id ownership, is the engine's unit of "did this get checked",
// the same granularity Applicable/Categories filtering already uses.
func countPassedRules(ctx *AnalysisContext, findings []Finding) int {
	fired := make(map[string]bool, len(findings))
	for _, f := range findings {
		fired[f.RuleID] = true
	}

	passed := 0
	for id, rule := range refdata.AllRules() {
		if !ctx.categoryRan(rule.Category) {
			continue
		}
		if !fired[id] {
			passed++
		}
	}
	return passed
}

// Background returns a no-op context.Context for callers that plumb a
// context.Context into DocRefIdStore.BatchCheck but have no request
// scope of their own.
func Background() context.Context {
	return context.Background()
}
