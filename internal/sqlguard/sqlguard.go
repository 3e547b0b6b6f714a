// Package sqlguard classifies SQL statements by intent and applies a row cap
// to unbounded reads. Both checks are keyword heuristics, not parsers:
// multi-statement strings, leading comments, and CTEs wrapping a write are
// known blind spots and are left unclassified on purpose.
package sqlguard

import (
	"fmt"
	"strings"
)

// writeKeywords are the leading keywords that mark a statement as
// data- or schema-mutating.
var writeKeywords = []string{
	"INSERT",
	"UPDATE",
	"DELETE",
	"DROP",
	"CREATE",
	"ALTER",
	"TRUNCATE",
	"REPLACE",
}

// IsWriteIntent reports whether the statement, after trimming leading
// whitespace, case-insensitively begins with a write keyword.
func IsWriteIntent(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, kw := range writeKeywords {
		if upper == kw {
			return true
		}
		if strings.HasPrefix(upper, kw) && !isWordChar(upper[len(kw)]) {
			return true
		}
	}
	return false
}

// ApplyRowLimit appends a LIMIT clause to SELECT statements that do not
// already carry one. Non-SELECT statements and statements that already
// contain a " LIMIT " token pass through unchanged. A LIMIT hidden inside a
// subquery defeats the substring check; that is an accepted limitation.
func ApplyRowLimit(query string, limit int) string {
	trimmed := strings.TrimSpace(query)
	upper := strings.ToUpper(trimmed)

	if !strings.HasPrefix(upper, "SELECT") {
		return query
	}
	if strings.Contains(upper, " LIMIT ") {
		return query
	}

	// Strip a trailing semicolon so the appended clause stays valid SQL.
	trimmed = strings.TrimRight(trimmed, "; \t\n\r")
	return fmt.Sprintf("%s LIMIT %d", trimmed, limit)
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9')
}
