package cbcrval

import "testing"

func TestDocSpecValidator_CorrectionMixingDetected(t *testing.T) {
	report := validReport()
	report.Message.MessageSpec.MessageTypeIndic = MessageTypeIndicCorrection
	report.Message.MessageSpec.CorrMessageRefId = "LU2024CBC00000"
	report.Message.CbcBody.ReportingEntity.DocSpec = DocSpec{
		DocTypeIndic:     DocTypeCorrection,
		DocRefId:         "LU2024CBC00001ENT0",
		CorrDocRefId:     "LU2023CBC00001ENT0",
		CorrMessageRefId: "LU2024CBC00000",
	}
	report.Message.CbcBody.CbcReports[0].DocSpec = DocSpec{
		DocTypeIndic:     DocTypeDeletion,
		DocRefId:         "LU2024CBC00001REP1",
		CorrDocRefId:     "LU2023CBC00001REP1",
		CorrMessageRefId: "LU2024CBC00000",
	}

	ctx := NewAnalysisContext(report, defaultTestOptions())
	findings := DocSpecValidator{}.Validate(ctx)

	if !hasRule(findings, "DOC-004") {
		t.Fatalf("expected DOC-004 for mixing correction and deletion DocTypeIndic, got: %+v", findings)
	}
}

func TestDocSpecValidator_NewMustNotCarryCorrectionRefs(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.ReportingEntity.DocSpec.CorrDocRefId = "LU2023CBC00001ENT0"

	ctx := NewAnalysisContext(report, defaultTestOptions())
	findings := DocSpecValidator{}.Validate(ctx)

	if !hasRule(findings, "DOC-008") {
		t.Fatalf("expected DOC-008 for a new DocSpec carrying CorrDocRefId, got: %+v", findings)
	}
}

func TestSummaryValidator_RevenueSumWithinTolerancePasses(t *testing.T) {
	report := validReport()
	s := &report.Message.CbcBody.CbcReports[0].Summary
	// A divergence of 0.004 against a 5,000,000 total is far inside the
	// 0.01% relative tolerance (500).
	s.TotalRevenues = money(5_000_000.004, "EUR")

	ctx := NewAnalysisContext(report, defaultTestOptions())
	findings := SummaryValidator{}.Validate(ctx)

	if hasRule(findings, "SUM-002") {
		t.Errorf("expected no SUM-002 within tolerance, got: %+v", findings)
	}
}

func TestTINValidator_PlaceholderDetected(t *testing.T) {
	report := validReport()
	report.Message.CbcBody.CbcReports[0].ConstEntities[0].TINs = []TIN{{Value: "999999999", IssuedBy: "LU"}}

	ctx := NewAnalysisContext(report, defaultTestOptions())
	findings := TINValidator{}.Validate(ctx)

	if !hasRule(findings, "TIN-004") {
		t.Fatalf("expected TIN-004 for a repeated-character placeholder TIN, got: %+v", findings)
	}
}
