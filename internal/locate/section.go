// Package locate finds the pages and pixel regions the data tables live
// in. Reports carry no machine-readable table grid, so everything is
// anchored on known text: a section heading locates the page, a
// load-bearing word locates the table within it.
package locate

import "strings"

// FindSectionPage returns the 1-indexed number of the first page whose
// text contains marker, or fallback when no page matches. Absence is a
// normal outcome given known gaps in the historical corpus, so there is
// no error path.
func FindSectionPage(pageTexts []string, marker string, fallback int) int {
	page, ok := SearchSectionPage(pageTexts, marker)
	if !ok {
		return fallback
	}
	return page
}

// SearchSectionPage is FindSectionPage without the fallback: the second
// return reports whether the marker was found at all.
func SearchSectionPage(pageTexts []string, marker string) (int, bool) {
	for i, text := range pageTexts {
		if strings.Contains(text, marker) {
			return i + 1, true
		}
	}
	return 0, false
}
