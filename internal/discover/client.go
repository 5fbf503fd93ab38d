package discover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

const fetchTimeout = 2 * time.Minute

// Client fetches listing pages and report PDFs from the city portal.
type Client struct {
	http *http.Client
	base *url.URL
}

// NewClient builds a client for baseURL, DefaultBaseURL when empty.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	return &Client{
		http: &http.Client{Timeout: fetchTimeout},
		base: base,
	}, nil
}

// YearPages returns the listing URL for every published reporting year.
func (c *Client) YearPages(ctx context.Context) (map[int]string, error) {
	body, err := c.get(ctx, c.base.String()+IndexPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseYearIndex(body, c.base)
}

// ReportURLs returns the corrected report list for one year.
func (c *Client) ReportURLs(ctx context.Context, yearPageURL string, year int) ([]string, error) {
	body, err := c.get(ctx, yearPageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseReportLinks(body, c.base, year)
}

// TermSheet downloads the district term sheet PDF into destDir.
func (c *Client) TermSheet(ctx context.Context, destDir string) (string, error) {
	return c.Fetch(ctx, c.base.String()+TermSheetPath, destDir)
}

// Fetch downloads one report into destDir, named after the URL's last
// path element, and returns the local path. An existing file of nonzero
// size is kept as-is so interrupted runs resume cheaply.
func (c *Client) Fetch(ctx context.Context, reportURL, destDir string) (string, error) {
	name := path.Base(reportURL)
	dest := filepath.Join(destDir, name)
	if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
		return dest, nil
	}

	body, err := c.get(ctx, reportURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(destDir, name+".partial-*")
	if err != nil {
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("placing %s: %w", name, err)
	}
	return dest, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: status %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}
