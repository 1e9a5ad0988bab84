package cbcrval

import (
	"testing"

	"github.com/oecdtools/cbcrval/refdata"
)

func TestNewValidationError_IgnoresBelowErrorSeverity(t *testing.T) {
	findings := []Finding{
		{RuleID: "ENC-006", Category: refdata.CategoryDataQuality, Severity: refdata.SeverityInfo},
		{RuleID: "ENC-002", Category: refdata.CategoryDataQuality, Severity: refdata.SeverityWarning},
	}
	if err := NewValidationError(findings); err != nil {
		t.Fatalf("expected nil error when no finding reaches error severity, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	findings := []Finding{
		{RuleID: "MSG-001", Category: refdata.CategoryBusiness, Severity: refdata.SeverityCritical},
		{RuleID: "DOC-004", Category: refdata.CategoryBusiness, Severity: refdata.SeverityError},
		{RuleID: "CC-001", Category: refdata.CategorySchemaConformity, Severity: refdata.SeverityError},
	}

	err := NewValidationError(findings)
	if err == nil {
		t.Fatal("expected a non-nil ValidationError")
	}

	const want = "validation failed at critical severity: 3 finding(s) across 2 categories (business=2, schema-conformity=1)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationError_ByCategoryAndCount(t *testing.T) {
	findings := []Finding{
		{RuleID: "MSG-001", Category: refdata.CategoryBusiness, Severity: refdata.SeverityCritical},
		{RuleID: "DOC-004", Category: refdata.CategoryBusiness, Severity: refdata.SeverityError},
	}
	err := NewValidationError(findings)

	if err.Count() != 2 {
		t.Errorf("Count() = %d, want 2", err.Count())
	}
	if got := err.ByCategory(refdata.CategoryBusiness); len(got) != 2 {
		t.Errorf("ByCategory(business) returned %d findings, want 2", len(got))
	}
	if got := err.ByCategory(refdata.CategoryPillar2); got != nil {
		t.Errorf("ByCategory(pillar2) = %v, want nil for an unrepresented category", got)
	}

	// Mutating the returned slice must not affect the wrapped findings.
	got := err.ByCategory(refdata.CategoryBusiness)
	got[0].RuleID = "MUTATED"
	if err.ByCategory(refdata.CategoryBusiness)[0].RuleID == "MUTATED" {
		t.Error("ByCategory leaked its internal slice to the caller")
	}
}

func TestValidationError_HasRuleAndWorstSeverity(t *testing.T) {
	findings := []Finding{
		{RuleID: "DOC-004", Category: refdata.CategoryBusiness, Severity: refdata.SeverityError},
		{RuleID: "MSG-001", Category: refdata.CategoryBusiness, Severity: refdata.SeverityCritical},
	}
	err := NewValidationError(findings)

	if !err.HasRule("MSG-001") {
		t.Error("expected HasRule(MSG-001) to be true")
	}
	if err.HasRule("SUM-002") {
		t.Error("expected HasRule(SUM-002) to be false")
	}
	if err.WorstSeverity() != refdata.SeverityCritical {
		t.Errorf("WorstSeverity() = %s, want critical", err.WorstSeverity())
	}
}
