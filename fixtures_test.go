package cbcrval

import "github.com/shopspring/decimal"

// money builds a Money value from a float for test readability; the
// module itself never constructs monetary amounts this way.
func money(v float64, currency string) Money {
	return Money{Value: decimal.NewFromFloat(v), Currency: currency}
}

// validReport builds a clean, internally consistent single-jurisdiction
// CbCR filing used as the baseline for every scenario test: a LU UPE
// reporting on itself and one constituent entity in LU, fiscal year
// 2024, no corrections, no Pillar Two exposure.
func validReport() *ParsedReport {
	return &ParsedReport{
		Message: Message{
			MessageSpec: MessageSpec{
				SendingCompetentAuthority:   "LU",
				ReceivingCompetentAuthority: "LU",
				MessageType:                 MessageTypeCbC,
				Language:                    "en",
				MessageRefId:                "LU2024CBC00001",
				MessageTypeIndic:            MessageTypeIndicNew,
				ReportingPeriod:             "2024-12-31",
				Timestamp:                   "2025-06-15T10:30:00Z",
			},
			CbcBody: CbcBody{
				ReportingEntity: ReportingEntity{
					Names:     []string{"Acme Holdings S.a.r.l."},
					Addresses: []Address{{CountryCode: "LU", Line: "1 Rue Example", City: "Luxembourg", PostCode: "L-1234"}},
					TINs:      []TIN{{Value: "12345678901", IssuedBy: "LU"}},
					ReportingRole: ReportingRoleUPE,
					DocSpec: DocSpec{
						DocTypeIndic: DocTypeNew,
						DocRefId:     "LU2024CBC00001ENT0",
					},
				},
				CbcReports: []CbcReport{
					{
						ResCountryCode: "LU",
						DocSpec: DocSpec{
							DocTypeIndic: DocTypeNew,
							DocRefId:     "LU2024CBC00001REP1",
						},
						Summary: Summary{
							TotalRevenues:       money(5_000_000, "EUR"),
							UnrelatedRevenues:   moneyPtr(3_000_000, "EUR"),
							RelatedRevenues:     moneyPtr(2_000_000, "EUR"),
							ProfitOrLoss:        money(500_000, "EUR"),
							TaxPaid:             money(100_000, "EUR"),
							TaxAccrued:          money(100_000, "EUR"),
							Capital:             money(1_000_000, "EUR"),
							AccumulatedEarnings: money(2_000_000, "EUR"),
							TangibleAssets:      money(1_500_000, "EUR"),
							NumberOfEmployees:   decimal.NewFromInt(3),
						},
						ConstEntities: []ConstituentEntity{
							{
								Names:             []string{"Acme Holdings S.a.r.l."},
								TINs:              []TIN{{Value: "12345678901", IssuedBy: "LU"}},
								IncorpCountryCode: "LU",
								AcctPeriodStart:   "2024-01-01",
								AcctPeriodEnd:     "2024-12-31",
								BusinessActivities: []BusinessActivity{ActivityProvisionOfServices},
							},
						},
					},
				},
			},
		},
	}
}

func moneyPtr(v float64, currency string) *Money {
	m := money(v, currency)
	return &m
}

// defaultTestOptions returns Options tuned for validReport(): LU, fiscal
// year 2024, Pillar Two and global DocRefId checks enabled but pointed
// at a no-op store so tests don't depend on an external service.
func defaultTestOptions() Options {
	opts := DefaultOptions()
	opts.FiscalYear = 2024
	return opts
}

func hasRule(findings []Finding, ruleID string) bool {
	for _, f := range findings {
		if f.RuleID == ruleID {
			return true
		}
	}
	return false
}

func countRule(findings []Finding, ruleID string) int {
	n := 0
	for _, f := range findings {
		if f.RuleID == ruleID {
			n++
		}
	}
	return n
}
