package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"

	"github.com/willfineberg/chi-tif-parser/internal/batch"
	"github.com/willfineberg/chi-tif-parser/internal/config"
	"github.com/willfineberg/chi-tif-parser/internal/dar"
	"github.com/willfineberg/chi-tif-parser/internal/discover"
	"github.com/willfineberg/chi-tif-parser/internal/document"
	"github.com/willfineberg/chi-tif-parser/internal/extract"
	"github.com/willfineberg/chi-tif-parser/internal/locate"
	"github.com/willfineberg/chi-tif-parser/internal/numeric"
	"github.com/willfineberg/chi-tif-parser/internal/output"
	"github.com/willfineberg/chi-tif-parser/internal/profile"
	"github.com/willfineberg/chi-tif-parser/internal/table"
	"github.com/willfineberg/chi-tif-parser/internal/termtable"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the configured level
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	// Cancel the run on SIGINT/SIGTERM so partial downloads are not left behind
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	prof, err := profile.ForYear(cfg.Year)
	if err != nil {
		return err
	}

	paths, err := reportPaths(ctx, cfg)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no report PDFs for %d under %s", cfg.Year, cfg.ReportsDir)
	}
	log.Printf("Parsing %d reports for filing year %d (%s form)", len(paths), cfg.Year, prof.Era)

	terms, err := loadTerms(ctx, cfg, prof)
	if err != nil {
		return fmt.Errorf("term sheet required to resolve district lifespans: %w", err)
	}

	factory := func() (batch.Processor, error) {
		loader := document.NewLoader(cfg.MaxFileSize)
		assembler := dar.NewAssembler(prof, extract.NewWordEngine(), terms,
			numeric.NewNormalizer(numeric.USCurrency()))
		return func(ctx context.Context, path string) (*dar.Result, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			doc, err := loader.Load(path)
			if err != nil {
				return nil, err
			}
			return assembler.Assemble(doc)
		}, nil
	}

	report, err := batch.NewRunner(cfg.Workers, factory).Run(ctx, paths)
	if err != nil {
		return err
	}

	for _, w := range report.Warnings {
		log.Printf("warning: %s", w)
	}
	for _, f := range report.Failures.Failures {
		log.Printf("failed: %s: %v", f.Document, f.Err)
	}
	if len(report.Records) == 0 {
		return fmt.Errorf("no records assembled: %s", report.Failures.Summary())
	}

	if err := output.WriteCSV(cfg.OutputPath, report.Records); err != nil {
		return err
	}
	log.Printf("Wrote %d records to %s (%s)", len(report.Records), cfg.OutputPath, report.Failures.Summary())
	return nil
}

// termSheetColumns are the x positions separating the term sheet's
// name, designated and terminated columns.
var termSheetColumns = []float64{330, 445}

// loadTerms resolves the district term table: a CSV snapshot when one
// is configured, otherwise the published PDF is downloaded and read.
func loadTerms(ctx context.Context, cfg *config.Config, prof *profile.Profile) (*termtable.Table, error) {
	if cfg.TermTablePath != "" {
		return termtable.Load(cfg.TermTablePath)
	}

	client, err := discover.NewClient(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	path, err := client.TermSheet(ctx, cfg.ReportsDir)
	if err != nil {
		return nil, err
	}

	doc, err := document.NewLoader(cfg.MaxFileSize).Load(path)
	if err != nil {
		return nil, err
	}

	engine := extract.NewWordEngine()
	var merged table.Grid
	for i := range doc.Pages {
		page := &doc.Pages[i]
		grid, err := engine.Extract(page, locate.Region{
			Top: 0, Left: 0, Bottom: 100, Right: 100, Relative: true,
		}, termSheetColumns)
		if err != nil {
			return nil, err
		}
		merged.Rows = append(merged.Rows, grid.Rows...)
	}
	return termtable.FromGrid(merged, prof.FirstTermArea)
}

// reportPaths resolves the documents for the run: the PDFs already in
// the reports directory, downloading them first in fetch mode.
func reportPaths(ctx context.Context, cfg *config.Config) ([]string, error) {
	if cfg.IsFetch() {
		if err := fetchReports(ctx, cfg); err != nil {
			return nil, err
		}
	}

	pattern := fmt.Sprintf("*AR%02d.pdf", cfg.Year%100)
	paths, err := filepath.Glob(filepath.Join(cfg.ReportsDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func fetchReports(ctx context.Context, cfg *config.Config) error {
	client, err := discover.NewClient(cfg.BaseURL)
	if err != nil {
		return err
	}

	years, err := client.YearPages(ctx)
	if err != nil {
		return err
	}
	yearURL, ok := years[cfg.Year]
	if !ok {
		return fmt.Errorf("portal lists no reports for %d", cfg.Year)
	}

	urls, err := client.ReportURLs(ctx, yearURL, cfg.Year)
	if err != nil {
		return err
	}
	log.Printf("Downloading %d reports into %s", len(urls), cfg.ReportsDir)
	for _, u := range urls {
		if _, err := client.Fetch(ctx, u, cfg.ReportsDir); err != nil {
			return err
		}
	}
	return nil
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Chicago TIF Parser\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
