// Package batch runs record assembly across a corpus of reports. One
// document's failure never stops the run; a panic in the pipeline does,
// since it means the bug is ours rather than the document's.
package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/willfineberg/chi-tif-parser/internal/dar"
	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
)

// Processor turns one report path into an assembled result.
type Processor func(ctx context.Context, path string) (*dar.Result, error)

// WorkerFactory builds one Processor per worker. Per-worker state, such
// as the numeric format, is established here exactly once.
type WorkerFactory func() (Processor, error)

// Outcome is the per-document result channelled back to the collector.
type Outcome struct {
	Index  int
	Path   string
	Result *dar.Result
	Err    error
}

// Report is the aggregate of one batch run. Records hold the successful
// documents in input order; Failures the rest.
type Report struct {
	Records  []*dar.Record
	Warnings []string
	Failures darerrors.Collection
}

// Runner fans report paths out over a fixed pool of workers.
type Runner struct {
	workers int
	factory WorkerFactory
}

// NewRunner builds a runner. Fewer than one worker is rounded up.
func NewRunner(workers int, factory WorkerFactory) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{workers: workers, factory: factory}
}

// Run processes every path and aggregates the outcomes. Per-document
// errors land in the report's failure collection; Run itself errors only
// on cancellation, a worker that cannot be built, or a panic in the
// pipeline, all of which abort the pool.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Outcome)
	results := make(chan Outcome)
	fatal := make(chan error, r.workers)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, jobs, results, fatal, cancel)
		}()
	}

	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- Outcome{Index: i, Path: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
		close(fatal)
	}()

	outcomes := make([]Outcome, 0, len(paths))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	if err := <-fatal; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return collect(outcomes), nil
}

func (r *Runner) work(ctx context.Context, jobs <-chan Outcome, results chan<- Outcome, fatal chan<- error, cancel context.CancelFunc) {
	defer func() {
		if v := recover(); v != nil {
			fatal <- fmt.Errorf("worker panic: %v", v)
			cancel()
		}
	}()

	process, err := r.factory()
	if err != nil {
		fatal <- fmt.Errorf("building worker: %w", err)
		cancel()
		return
	}

	for job := range jobs {
		res, err := process(ctx, job.Path)
		job.Result, job.Err = res, err
		select {
		case results <- job:
		case <-ctx.Done():
			return
		}
	}
}

// collect re-sorts outcomes into input order so output is deterministic
// regardless of worker scheduling.
func collect(outcomes []Outcome) *Report {
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	report := &Report{}
	for _, o := range outcomes {
		if o.Err != nil {
			report.Failures.Add(o.Path, o.Err)
			continue
		}
		report.Records = append(report.Records, o.Result.Record)
		for _, w := range o.Result.Warnings {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", o.Path, w))
		}
	}
	return report
}
