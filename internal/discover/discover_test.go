package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yearIndexHTML = `<html><body>
<p>TIF district annual reports are available by reporting year:</p>
<ul>
<li><a href="/city/en/depts/dcd/supp_info/tif_annual_reports2022.html">2022</a></li>
<li><a href="/city/en/depts/dcd/supp_info/tif_annual_reports2021.html">2021</a></li>
<li><a href="/city/en/depts/dcd/provdrs/tif/maps.html">Maps</a></li>
<li><a href="/city/en/depts/dcd/supp_info/not-a-year.html">Archive</a></li>
</ul>
</body></html>`

const yearPageHTML = `<html><body>
<a href="/content/dam/city/depts/dcd/tif/22reports/T_051_CentralLoopAR22.pdf">Central Loop</a>
<a href="/content/dam/city/depts/dcd/tif/22reports/T_051_CentralLoopAR22.pdf">Central Loop (duplicate)</a>
<a href="/content/dam/city/depts/dcd/tif/22reports/T_014_ArcherCourtsAR22.pdf">Archer Courts</a>
<a href="/content/dam/city/depts/dcd/tif/22reports/T_062_KinzieAR22.pdf">Kinzie Industrial Corridor</a>
<a href="/content/dam/city/depts/dcd/tif/maps/T_051_CentralLoop_map.pdf">Central Loop map</a>
</body></html>`

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestParseYearIndex(t *testing.T) {
	base := mustParse(t, DefaultBaseURL)

	years, err := ParseYearIndex(strings.NewReader(yearIndexHTML), base)
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, DefaultBaseURL+"/city/en/depts/dcd/supp_info/tif_annual_reports2022.html", years[2022])
	assert.Contains(t, years, 2021)
}

func TestParseYearIndexEmpty(t *testing.T) {
	_, err := ParseYearIndex(strings.NewReader("<html><body></body></html>"), nil)
	assert.Error(t, err)
}

func TestParseReportLinks(t *testing.T) {
	base := mustParse(t, DefaultBaseURL)

	urls, err := ParseReportLinks(strings.NewReader(yearPageHTML), base, 2022)
	require.NoError(t, err)

	// duplicate collapsed, map link ignored, Archer Courts dropped
	require.Len(t, urls, 2)
	assert.True(t, strings.HasSuffix(urls[0], "T_051_CentralLoopAR22.pdf"))
	assert.True(t, strings.HasSuffix(urls[1], "T_062_KinzieAR22.pdf"))
}

func TestParseReportLinksNone(t *testing.T) {
	_, err := ParseReportLinks(strings.NewReader(yearPageHTML), nil, 2019)
	assert.Error(t, err)
}

func TestAdjustReportURLs(t *testing.T) {
	t.Run("archer courts kept from 2023", func(t *testing.T) {
		urls := []string{"a/T_014_ArcherCourtsAR23.pdf", "b/T_051_CentralLoopAR23.pdf"}
		assert.Equal(t, urls, AdjustReportURLs(urls, 2023))
	})

	t.Run("missing 40th/State inserted for 2011 through 2013", func(t *testing.T) {
		urls := make([]string, 8)
		for i := range urls {
			urls[i] = "u"
		}
		adjusted := AdjustReportURLs(urls, 2012)
		require.Len(t, adjusted, 9)
		assert.Contains(t, adjusted[5], "T_132_40thStateAR12.pdf")
	})

	t.Run("2010 gets no insertions", func(t *testing.T) {
		urls := []string{"u", "u"}
		assert.Equal(t, urls, AdjustReportURLs(urls, 2010))
	})

	t.Run("2011 also restores Chatham Ridge", func(t *testing.T) {
		urls := make([]string, 60)
		for i := range urls {
			urls[i] = "u"
		}
		adjusted := AdjustReportURLs(urls, 2011)
		require.Len(t, adjusted, 62)
		assert.Contains(t, adjusted[5], "T_132_40thStateAR11.pdf")
		assert.Contains(t, adjusted[57], "T_015_ChathamRidgeAR11.pdf")
	})

	t.Run("short list appends the insertion", func(t *testing.T) {
		adjusted := AdjustReportURLs([]string{"u", "u"}, 2013)
		require.Len(t, adjusted, 3)
		assert.Contains(t, adjusted[2], "T_132_40thStateAR13.pdf")
	})
}

func TestClientFetch(t *testing.T) {
	const payload = "%PDF-1.4 fake report body"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "T_051_CentralLoopAR22.pdf") {
			w.Write([]byte(payload))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	dir := t.TempDir()

	path, err := c.Fetch(context.Background(), srv.URL+"/22reports/T_051_CentralLoopAR22.pdf", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	// second fetch reuses the existing file
	again, err := c.Fetch(context.Background(), srv.URL+"/22reports/T_051_CentralLoopAR22.pdf", dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	_, err = c.Fetch(context.Background(), srv.URL+"/22reports/T_999_MissingAR22.pdf", dir)
	assert.Error(t, err)
}
