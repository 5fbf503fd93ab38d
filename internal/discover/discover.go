// Package discover harvests annual report download links from the
// city's TIF district pages. The pages are hand-maintained HTML, so the
// harvest includes corrections for known gaps and duplicates.
package discover

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the city portal serving the district report pages.
const DefaultBaseURL = "https://www.chicago.gov"

// IndexPath is the page listing one link per published reporting year.
const IndexPath = "/city/en/depts/dcd/supp_info/tif-district-annual-reports--2004-present.html"

// TermSheetPath is the published term sheet PDF giving each district's
// designation and termination dates.
const TermSheetPath = "/content/dam/city/depts/dcd/tif/TIF_Term_Sheet.pdf"

var yearLinkPattern = regexp.MustCompile(`^\d{4}$`)

// ParseYearIndex reads the reporting-year index page and maps each year
// to its listing URL, resolved against base.
func ParseYearIndex(r io.Reader, base *url.URL) (map[int]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing year index: %w", err)
	}

	years := make(map[int]string)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if !yearLinkPattern.MatchString(text) {
			return
		}
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "supp_info") {
			return
		}
		year, err := strconv.Atoi(text)
		if err != nil {
			return
		}
		years[year] = resolve(base, href)
	})
	if len(years) == 0 {
		return nil, fmt.Errorf("year index page lists no reporting years")
	}
	return years, nil
}

// ParseReportLinks reads one year's listing page and returns the report
// PDF URLs in page order, deduplicated. Only links ending in the year's
// AR suffix count; the pages also link maps and redevelopment plans.
func ParseReportLinks(r io.Reader, base *url.URL, year int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing report listing: %w", err)
	}

	suffix := fmt.Sprintf("AR%02d.pdf", year%100)
	seen := make(map[string]bool)
	var urls []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(href, suffix) {
			return
		}
		full := resolve(base, href)
		if seen[full] {
			return
		}
		seen[full] = true
		urls = append(urls, full)
	})
	if len(urls) == 0 {
		return nil, fmt.Errorf("no %s reports linked for %d", suffix, year)
	}
	return AdjustReportURLs(urls, year), nil
}

// AdjustReportURLs applies the known corrections to a harvested list:
// districts the pages link in error are dropped, districts the pages
// forgot are inserted at their alphabetical position.
func AdjustReportURLs(urls []string, year int) []string {
	out := urls[:0:0]
	for _, u := range urls {
		// the Archer Courts listing linked a nonexistent file until 2023
		if year <= 2022 && strings.Contains(u, "ArcherCourts") {
			continue
		}
		out = append(out, u)
	}
	for _, m := range missingReports(year) {
		out = insertAt(out, m.index, m.url)
	}
	return out
}

type missing struct {
	index int
	url   string
}

// missingReports lists reports published on the portal but never linked
// from their year's listing page.
func missingReports(year int) []missing {
	yy := year % 100
	var out []missing
	// 40th/State is linked from no year's listing page but its reports
	// exist on the portal for 2011 through 2013.
	if year >= 2011 && year <= 2013 {
		out = append(out, missing{
			index: 5,
			url: fmt.Sprintf("%s/content/dam/city/depts/dcd/tif/%02dreports/T_132_40thStateAR%02d.pdf",
				DefaultBaseURL, yy, yy),
		})
	}
	// Chatham Ridge is missing from the 2011 listing only.
	if year == 2011 {
		out = append(out, missing{
			index: 57,
			url: fmt.Sprintf("%s/content/dam/city/depts/dcd/tif/%02dreports/T_015_ChathamRidgeAR%02d.pdf",
				DefaultBaseURL, yy, yy),
		})
	}
	return out
}

func insertAt(urls []string, index int, u string) []string {
	if index >= len(urls) {
		return append(urls, u)
	}
	urls = append(urls, "")
	copy(urls[index+1:], urls[index:])
	urls[index] = u
	return urls
}

func resolve(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
