package internal

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// fold case-folds s for case-insensitive substring matching.
// A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// containsAny reports whether folded text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	folded := fold(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, fold(kw)) {
			return true
		}
	}
	return false
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
