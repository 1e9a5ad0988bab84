package cbcrval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oecdtools/cbcrval/refdata"
)

// ValidationError wraps the error-and-critical-severity findings from a
// ValidationReport as a plain Go error, grouped by category so a caller
// logging err.Error() sees which parts of the filing are broken rather
// than a single arbitrary finding. Most callers should inspect
// ValidationReport.Results directly; this exists for call sites that
// want a conventional err != nil check.
//
// Grounded on the teacher's validation.go (ValidationError/SemanticError
// wrapper); reshaped here around refdata.Category since a flat rule list
// is less useful once findings carry the richer Category/Severity pair
// the teacher's single-severity SemanticError never had.
type ValidationError struct {
	byCategory map[refdata.Category][]Finding
	worst      refdata.Severity
	total      int
}

// NewValidationError wraps findings's error-or-worse severity entries as
// an error, bucketed by category. Returns nil if findings contains none
// at that severity.
func NewValidationError(findings []Finding) *ValidationError {
	byCategory := make(map[refdata.Category][]Finding)
	worst := refdata.SeverityInfo
	total := 0

	for _, f := range findings {
		if f.Severity != refdata.SeverityCritical && f.Severity != refdata.SeverityError {
			continue
		}
		byCategory[f.Category] = append(byCategory[f.Category], f)
		total++
		if worst.Less(f.Severity) {
			worst = f.Severity
		}
	}

	if total == 0 {
		return nil
	}
	return &ValidationError{byCategory: byCategory, worst: worst, total: total}
}

// Error implements the error interface. The message leads with the
// severity of the worst finding, then a per-category tally rather than
// quoting any single finding's text, so two filings with the same shape
// of failure produce the same message regardless of finding order.
func (e *ValidationError) Error() string {
	cats := make([]string, 0, len(e.byCategory))
	for c := range e.byCategory {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%s=%d", c, len(e.byCategory[refdata.Category(c)])))
	}

	return fmt.Sprintf("validation failed at %s severity: %d finding(s) across %d categor%s (%s)",
		e.worst, e.total, len(cats), pluralSuffix(len(cats)), strings.Join(parts, ", "))
}

func pluralSuffix(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// Categories returns the distinct categories represented in the wrapped
// findings, sorted for deterministic output.
func (e *ValidationError) Categories() []refdata.Category {
	out := make([]refdata.Category, 0, len(e.byCategory))
	for c := range e.byCategory {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ByCategory returns a copy of the wrapped findings for one category,
// preventing external mutation of the internal slice.
func (e *ValidationError) ByCategory(c refdata.Category) []Finding {
	src := e.byCategory[c]
	if src == nil {
		return nil
	}
	out := make([]Finding, len(src))
	copy(out, src)
	return out
}

// Count returns the total number of wrapped findings across every
// category.
func (e *ValidationError) Count() int {
	return e.total
}

// WorstSeverity returns the most severe wrapped finding's severity.
func (e *ValidationError) WorstSeverity() refdata.Severity {
	return e.worst
}

// HasRule reports whether a specific rule id is present among the
// wrapped findings, e.g. "DOC-002" or "P2-SH-FAIL".
func (e *ValidationError) HasRule(ruleID string) bool {
	for _, findings := range e.byCategory {
		for _, f := range findings {
			if f.RuleID == ruleID {
				return true
			}
		}
	}
	return false
}
