package refdata

import "testing"

func TestCountryByCode_HandlesELAlias(t *testing.T) {
	el, ok := CountryByCode("EL")
	if !ok {
		t.Fatal("expected EL to resolve via the Greece alias")
	}
	gr, ok := CountryByCode("GR")
	if !ok {
		t.Fatal("expected GR to be a known country")
	}
	if el.Code != gr.Code {
		t.Errorf("EL alias resolved to %q, want %q", el.Code, gr.Code)
	}
}

func TestIsValidCountryCode(t *testing.T) {
	if !IsValidCountryCode("LU") {
		t.Error("expected LU to be valid")
	}
	if IsValidCountryCode("ZZ") {
		t.Error("expected ZZ to be invalid")
	}
}

func TestRuleByID_KnownAndUnknown(t *testing.T) {
	rule, ok := RuleByID("SUM-002")
	if !ok {
		t.Fatal("expected SUM-002 to be a known rule")
	}
	if rule.Category != CategoryBusiness {
		t.Errorf("SUM-002 category = %s, want %s", rule.Category, CategoryBusiness)
	}
	if _, ok := RuleByID("NOPE-999"); ok {
		t.Error("expected unknown rule id to report not-found")
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !SeverityInfo.Less(SeverityWarning) {
		t.Error("info should be less severe than warning")
	}
	if !SeverityWarning.Less(SeverityError) {
		t.Error("warning should be less severe than error")
	}
	if !SeverityError.Less(SeverityCritical) {
		t.Error("error should be less severe than critical")
	}
	if SeverityCritical.Less(SeverityInfo) {
		t.Error("critical should not be less severe than info")
	}
}

func TestChargingMechanismPriority(t *testing.T) {
	lu, ok := Pillar2JurisdictionByCode("LU")
	if !ok {
		t.Fatal("expected LU to be a known Pillar Two jurisdiction")
	}
	if got := lu.ChargingMechanism(); got != "QDMTT" {
		t.Errorf("LU charging mechanism = %q, want QDMTT (QDMTT outranks IIR/UTPR)", got)
	}
}

func TestSimplifiedETRThresholdByYear(t *testing.T) {
	cases := map[int]string{2024: "0.15", 2025: "0.16", 2026: "0.17", 2030: "0.15"}
	for year, want := range cases {
		got := SimplifiedETRThreshold(year).String()
		if got != want {
			t.Errorf("SimplifiedETRThreshold(%d) = %s, want %s", year, got, want)
		}
	}
}
