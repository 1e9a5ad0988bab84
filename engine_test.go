package cbcrval

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oecdtools/cbcrval/refdata"
)

func TestEngine_HappyPath(t *testing.T) {
	report := validReport()
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if result.Summary.Critical != 0 {
		t.Fatalf("expected no critical findings, got %d: %+v", result.Summary.Critical, result.Results)
	}
	if !result.IsValid {
		t.Fatalf("expected IsValid true, findings: %+v", result.Results)
	}
	for _, badRule := range []string{"DOC-002", "SUM-002", "MSG-006", "DOC-005"} {
		if hasRule(result.Results, badRule) {
			t.Errorf("did not expect %s in the happy-path fixture, findings: %+v", badRule, result.Results)
		}
	}
}

func TestEngine_DuplicateDocRefId(t *testing.T) {
	report := validReport()
	dup := report.Message.CbcBody.ReportingEntity.DocSpec.DocRefId
	report.Message.CbcBody.AdditionalInfo = []AdditionalInfo{
		{
			DocSpec: DocSpec{DocTypeIndic: DocTypeNew, DocRefId: dup},
			OtherInfo: "Group-level narrative explaining the LU filing structure.",
		},
	}

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if countRule(result.Results, "DOC-002") != 1 {
		t.Fatalf("expected exactly one DOC-002 finding for the duplicated DocRefId, got findings: %+v", result.Results)
	}
}

func TestEngine_RevenueSumMismatch(t *testing.T) {
	report := validReport()
	// unrelated(3M) + related(2M) = 5M, but TotalRevenues is set to 6M,
	// a 1M divergence far beyond the 0.01% tolerance.
	report.Message.CbcBody.CbcReports[0].Summary.TotalRevenues = money(6_000_000, "EUR")

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if !hasRule(result.Results, "SUM-002") {
		t.Fatalf("expected SUM-002 for the revenue sum mismatch, got findings: %+v", result.Results)
	}
}

func TestEngine_CorrectionWithoutReference(t *testing.T) {
	report := validReport()
	report.Message.MessageSpec.MessageTypeIndic = MessageTypeIndicCorrection
	report.Message.CbcBody.ReportingEntity.DocSpec.DocTypeIndic = DocTypeCorrection
	// CorrMessageRefId/CorrDocRefId deliberately left blank.

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if !hasRule(result.Results, "MSG-006") {
		t.Errorf("expected MSG-006 (correction message missing CorrMessageRefId), got findings: %+v", result.Results)
	}
	if !hasRule(result.Results, "DOC-005") {
		t.Errorf("expected DOC-005 (correction DocSpec missing CorrDocRefId), got findings: %+v", result.Results)
	}
	if !hasRule(result.Results, "DOC-006") {
		t.Errorf("expected DOC-006 (correction DocSpec missing CorrMessageRefId), got findings: %+v", result.Results)
	}
}

func TestEngine_Pillar2DeMinimisSafeHarbour(t *testing.T) {
	report := validReport()
	s := &report.Message.CbcBody.CbcReports[0].Summary
	s.TotalRevenues = money(5_000_000, "EUR")
	s.UnrelatedRevenues = moneyPtr(3_000_000, "EUR")
	s.RelatedRevenues = moneyPtr(2_000_000, "EUR")
	s.ProfitOrLoss = money(500_000, "EUR")
	s.TaxAccrued = money(0, "EUR")
	s.NumberOfEmployees = decimal.NewFromInt(3)
	s.TangibleAssets = money(0, "EUR")

	opts := defaultTestOptions()
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	passFinding := findFirst(result.Results, "P2-SH-PASS")
	if passFinding == nil {
		t.Fatalf("expected P2-SH-PASS, got findings: %+v", result.Results)
	}
	if passFinding.Details["qualifyingTests"] == "" {
		t.Errorf("expected P2-SH-PASS to name its qualifying test(s)")
	}
	if hasRule(result.Results, "P2-JUR-010") {
		t.Errorf("safe-harbour pass should suppress the top-up-tax risk finding, got: %+v", result.Results)
	}
}

func TestEngine_Pillar2LowTaxEstimate(t *testing.T) {
	report := validReport()
	s := &report.Message.CbcBody.CbcReports[0].Summary
	s.TotalRevenues = money(50_000_000, "EUR")
	s.UnrelatedRevenues = moneyPtr(30_000_000, "EUR")
	s.RelatedRevenues = moneyPtr(20_000_000, "EUR")
	s.ProfitOrLoss = money(10_000_000, "EUR")
	s.TaxAccrued = money(500_000, "EUR") // ETR = 5%
	s.TaxPaid = money(500_000, "EUR")
	s.NumberOfEmployees = decimal.NewFromInt(200)
	s.TangibleAssets = money(1_000_000, "EUR")

	opts := defaultTestOptions()
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	if !hasRule(result.Results, "P2-SH-FAIL") {
		t.Fatalf("expected P2-SH-FAIL, got findings: %+v", result.Results)
	}
	jur := findFirst(result.Results, "P2-JUR-010")
	if jur == nil {
		t.Fatalf("expected P2-JUR-010, got findings: %+v", result.Results)
	}
	if jur.Details["risk"] != "high" {
		t.Errorf("expected risk=high, got %q", jur.Details["risk"])
	}
	estimate, err := decimal.NewFromString(jur.Details["estimatedTopUp"])
	if err != nil {
		t.Fatalf("estimatedTopUp not a decimal: %v", err)
	}
	want := decimal.NewFromInt(1_000_000)
	if !estimate.Equal(want) {
		t.Errorf("estimatedTopUp = %s, want %s", estimate, want)
	}
}

func findFirst(findings []Finding, ruleID string) *Finding {
	for i := range findings {
		if findings[i].RuleID == ruleID {
			return &findings[i]
		}
	}
	return nil
}

// TestEngine_Determinism verifies spec §8's finding-determinism property:
// running the same report through the engine twice yields byte-identical
// finding order.
func TestEngine_Determinism(t *testing.T) {
	report := validReport()
	opts := defaultTestOptions()
	engine := DefaultEngine()

	first := engine.Validate(ValidationRequest{Report: report, Options: opts})
	second := engine.Validate(ValidationRequest{Report: report, Options: opts})

	if len(first.Results) != len(second.Results) {
		t.Fatalf("finding count differs across runs: %d vs %d", len(first.Results), len(second.Results))
	}
	for i := range first.Results {
		if first.Results[i].RuleID != second.Results[i].RuleID || first.Results[i].XPath != second.Results[i].XPath {
			t.Fatalf("finding order differs at index %d: %+v vs %+v", i, first.Results[i], second.Results[i])
		}
	}
}

// TestEngine_FailFastUpperBound verifies spec §8's fail-fast upper-bound
// property: with FailFast enabled, at most one critical finding is ever
// accumulated.
func TestEngine_FailFastUpperBound(t *testing.T) {
	report := validReport()
	// Force at least two critical findings: re-using the same id three
	// times over yields two in-file DOC-002 duplicates (the default no-op
	// DocRefId store adds no global-uniqueness finding).
	dup := report.Message.CbcBody.ReportingEntity.DocSpec.DocRefId
	report.Message.CbcBody.AdditionalInfo = []AdditionalInfo{
		{DocSpec: DocSpec{DocTypeIndic: DocTypeNew, DocRefId: dup}, OtherInfo: "dup one"},
		{DocSpec: DocSpec{DocTypeIndic: DocTypeNew, DocRefId: dup}, OtherInfo: "dup two"},
	}

	opts := defaultTestOptions()
	opts.FailFast = true
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	if result.Summary.Critical > 1 {
		t.Errorf("fail-fast should cap critical findings at 1, got %d: %+v", result.Summary.Critical, result.Results)
	}
}

// TestEngine_CategoryFilterClosure verifies spec §8's category-filter
// closure property: restricting Options.Categories to one category
// means every returned finding belongs to that category.
func TestEngine_CategoryFilterClosure(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.CbcReports[0].Summary.TotalRevenues = money(6_000_000, "EUR") // trips SUM-002, business category

	opts := defaultTestOptions()
	opts.Categories = []string{string(refdata.CategoryDataQuality)}
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	for _, f := range result.Results {
		if f.Category != refdata.CategoryDataQuality {
			t.Errorf("expected only %s findings, got %s (%s)", refdata.CategoryDataQuality, f.Category, f.RuleID)
		}
	}
}

// TestEngine_StrictModeSeverityMonotonicity verifies spec §8's severity
// monotonicity property: turning on StrictMode never decreases any
// finding's severity, and every warning becomes an error.
func TestEngine_StrictModeSeverityMonotonicity(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.CbcReports[0].Summary.TangibleAssets = money(0, "EUR") // trips an info/warning somewhere

	lenientOpts := defaultTestOptions()
	strictOpts := defaultTestOptions()
	strictOpts.StrictMode = true

	engine := DefaultEngine()
	lenient := engine.Validate(ValidationRequest{Report: report, Options: lenientOpts})
	strict := engine.Validate(ValidationRequest{Report: report, Options: strictOpts})

	lenientByKey := make(map[string]refdata.Severity, len(lenient.Results))
	for _, f := range lenient.Results {
		lenientByKey[f.RuleID+"|"+f.XPath+"|"+f.Message] = f.Severity
	}
	for _, f := range strict.Results {
		if before, ok := lenientByKey[f.RuleID+"|"+f.XPath+"|"+f.Message]; ok {
			if f.Severity.Less(before) {
				t.Errorf("strict mode decreased severity for %s: %s -> %s", f.RuleID, before, f.Severity)
			}
			if before == refdata.SeverityWarning && f.Severity != refdata.SeverityError {
				t.Errorf("expected warning %s to become error under strict mode, got %s", f.RuleID, f.Severity)
			}
		}
	}
}

// TestEngine_SafeHarbourOrProperty verifies spec §8's OR-property: a
// jurisdiction emits P2-SH-PASS if any one of the three independent
// tests passes, even when the other two fail.
func TestEngine_SafeHarbourOrProperty(t *testing.T) {
	report := validReport()
	s := &report.Message.CbcBody.CbcReports[0].Summary
	// Fails de-minimis (revenue too high) and simplified ETR (zero tax),
	// but passes routine-profits: tiny profit against a large payroll.
	s.TotalRevenues = money(50_000_000, "EUR")
	s.UnrelatedRevenues = moneyPtr(30_000_000, "EUR")
	s.RelatedRevenues = moneyPtr(20_000_000, "EUR")
	s.ProfitOrLoss = money(100_000, "EUR")
	s.TaxAccrued = money(0, "EUR")
	s.NumberOfEmployees = decimal.NewFromInt(50)
	s.TangibleAssets = money(0, "EUR")

	opts := defaultTestOptions()
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	pass := findFirst(result.Results, "P2-SH-PASS")
	if pass == nil {
		t.Fatalf("expected P2-SH-PASS via the routine-profits test, got: %+v", result.Results)
	}
	if pass.Details["qualifyingTests"] != "[routine_profits]" {
		t.Errorf("expected only routine_profits to qualify, got %q", pass.Details["qualifyingTests"])
	}
}

// TestEngine_SendingReceivingAuthorityDiffer verifies MSG-014 fires when
// the sending and receiving competent authority genuinely differ (the
// suspicious case for a CBC401 filing), and not on the happy-path
// fixture where both are LU.
func TestEngine_SendingReceivingAuthorityDiffer(t *testing.T) {
	report := validReport()
	report.Message.MessageSpec.ReceivingCompetentAuthority = "FR"

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if !hasRule(result.Results, "MSG-014") {
		t.Fatalf("expected MSG-014 when sending (LU) and receiving (FR) authorities differ, got: %+v", result.Results)
	}
}

func TestEngine_InvalidAndDuplicateCountryCodes(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.CbcReports[0].ConstEntities[0].IncorpCountryCode = "ZZ"
	dup := report.Message.CbcBody.CbcReports[0]
	dup.DocSpec.DocRefId = "LU2024CBC00001REP2"
	report.Message.CbcBody.CbcReports = append(report.Message.CbcBody.CbcReports, dup)

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if !hasRule(result.Results, "CC-002") {
		t.Errorf("expected CC-002 for the duplicated ResCountryCode LU, got: %+v", result.Results)
	}
	if !hasRule(result.Results, "CC-003") {
		t.Errorf("expected CC-003 for the invalid IncorpCountryCode ZZ, got: %+v", result.Results)
	}
}

func TestEngine_MissingRequiredSummaryField(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.CbcReports[0].Summary.TaxAccrued = Money{}

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: defaultTestOptions()})

	if !hasRule(result.Results, "ENC-001") {
		t.Fatalf("expected ENC-001 when TaxAccrued has no currency (the missing-field signal), got: %+v", result.Results)
	}
}

// TestEngine_JurisdictionsFilter verifies Options.Jurisdictions narrows
// the aggregate views the Pillar Two and summary validators consult,
// without touching structural checks that walk the raw report.
func TestEngine_JurisdictionsFilter(t *testing.T) {
	report := validReport()
	second := report.Message.CbcBody.CbcReports[0]
	second.ResCountryCode = "DE"
	second.DocSpec.DocRefId = "LU2024CBC00001REP2"
	report.Message.CbcBody.CbcReports = append(report.Message.CbcBody.CbcReports, second)

	opts := defaultTestOptions()
	opts.Jurisdictions = []string{"LU"}
	ctx := NewAnalysisContext(report, opts)

	if len(ctx.Jurisdictions()) != 1 {
		t.Fatalf("expected Jurisdictions() filtered to 1 entry, got %d", len(ctx.Jurisdictions()))
	}
	if ctx.Jurisdictions()[0].Code != "LU" {
		t.Errorf("expected the filtered jurisdiction to be LU, got %s", ctx.Jurisdictions()[0].Code)
	}

	totals := ctx.GlobalTotals()
	if !totals.TotalRevenues.Equal(decimal.NewFromInt(5_000_000)) {
		t.Errorf("expected GlobalTotals to sum only the LU jurisdiction, got %s", totals.TotalRevenues)
	}
}

// TestEngine_TestModeDowngradesSeverity verifies Options.TestMode
// downgrades non-critical findings to info for an OECD10-OECD13 test
// submission, leaving critical (schema-conformity) findings untouched.
func TestEngine_TestModeDowngradesSeverity(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.ReportingEntity.DocSpec.DocTypeIndic = DocTypeTestNew
	report.Message.CbcBody.CbcReports[0].Summary.TotalRevenues = money(6_000_000, "EUR") // trips SUM-002 (error)

	opts := defaultTestOptions()
	opts.TestMode = true
	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	f := findFirst(result.Results, "SUM-002")
	if f == nil {
		t.Fatalf("expected SUM-002 to still fire under TestMode, got: %+v", result.Results)
	}
	if f.Severity != refdata.SeverityInfo {
		t.Errorf("expected TestMode to downgrade SUM-002 to info, got %s", f.Severity)
	}
}

// TestEngine_TrackTimingPopulatesMetadata verifies Options.TrackTiming
// surfaces a non-empty per-phase breakdown on ValidationReport.Metadata.
func TestEngine_TrackTimingPopulatesMetadata(t *testing.T) {
	report := validReport()
	opts := defaultTestOptions()
	opts.TrackTiming = true

	engine := DefaultEngine()
	result := engine.Validate(ValidationRequest{Report: report, Options: opts})

	if len(result.Metadata.PhaseTimingsMs) == 0 {
		t.Fatalf("expected TrackTiming to populate Metadata.PhaseTimingsMs, got %+v", result.Metadata)
	}
	if _, ok := result.Metadata.PhaseTimingsMs["business_rules"]; !ok {
		t.Errorf("expected a business_rules phase timing entry, got %+v", result.Metadata.PhaseTimingsMs)
	}
}

// TestEngine_IncludePassedRulesCounts verifies Options.IncludePassedRules
// gates Summary.Passed: zero when unset, and at least one distinct
// checked-but-clean rule id counted when set, on the happy-path fixture.
func TestEngine_IncludePassedRulesCounts(t *testing.T) {
	report := validReport()

	without := defaultTestOptions()
	withPassed := defaultTestOptions()
	withPassed.IncludePassedRules = true

	engine := DefaultEngine()
	resultWithout := engine.Validate(ValidationRequest{Report: report, Options: without})
	resultWith := engine.Validate(ValidationRequest{Report: report, Options: withPassed})

	if resultWithout.Summary.Passed != 0 {
		t.Errorf("expected Passed to stay 0 when IncludePassedRules is unset, got %d", resultWithout.Summary.Passed)
	}
	if resultWith.Summary.Passed == 0 {
		t.Fatalf("expected Passed > 0 on the clean happy-path fixture when IncludePassedRules is set")
	}
}
