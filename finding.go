package cbcrval

import "github.com/oecdtools/cbcrval/refdata"

// Finding is one diagnostic produced by a validator: a stable rule id,
// its severity and category, a human message, and whatever location and
// remediation context the validator had available.
type Finding struct {
	RuleID        string
	Category      refdata.Category
	Severity      refdata.Severity
	Message       string
	XPath         string
	Details       map[string]string
	Suggestion    string
	Reference     string
	OECDErrorCode string
	FieldName     string
	ActualValue   string
	ExpectedValue string
}
