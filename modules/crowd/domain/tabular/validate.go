package tabular

import "sort"

// Validate checks a decoded document against the set of field names a template
// expects. It reports set mismatches between the header and the template
// first, then per-row arity mismatches in file order. Line numbers are
// 1-based with the header on line 1, so the first data row is line 2.
func Validate(templateFields, header []string, rows [][]string) []Issue {
	headerSet := toSet(header)
	templateSet := toSet(templateFields)

	var issues []Issue
	if extra := sortedDifference(headerSet, templateSet); len(extra) > 0 {
		issues = append(issues, newExtraFieldsIssue(extra))
	}
	if missing := sortedDifference(templateSet, headerSet); len(missing) > 0 {
		issues = append(issues, newMissingFieldsIssue(missing))
	}

	expected := len(header)
	for i, row := range rows {
		if len(row) != expected {
			issues = append(issues, newRowArityIssue(i+2, len(row), expected))
		}
	}
	return issues
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedDifference(from, subtract map[string]struct{}) []string {
	var out []string
	for v := range from {
		if _, ok := subtract[v]; !ok {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
