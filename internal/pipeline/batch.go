package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/desertthunder/ytz/internal/shared"
	"golang.org/x/time/rate"
)

// Worker-count bounds for one batch.
const (
	MinWorkers     = 1
	MaxWorkers     = 16
	DefaultWorkers = 4
)

// ClampWorkers clamps n into [MinWorkers, MaxWorkers].
func ClampWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// ParseWorkers converts a raw form/flag value into an effective worker count.
//
// An empty or unparsable value yields exactly DefaultWorkers; anything else is
// clamped.
func ParseWorkers(raw string) int {
	if raw == "" {
		return DefaultWorkers
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultWorkers
	}
	return ClampWorkers(n)
}

// BatchOpts configures one batch invocation.
type BatchOpts struct {
	// Workers bounds concurrent item processors; 0 means DefaultWorkers.
	Workers int
	// RateLimit paces item dispatch in items per second; 0 disables pacing.
	RateLimit float64
}

// Run processes all references with a bounded worker pool and collects one
// Result per reference.
//
// Results arrive in completion order, not submission order. A panicking item
// processor is recovered and recorded as that item's failure; nothing aborts
// sibling work. The only batch-level error is an empty reference list.
func (p *Processor) Run(ctx context.Context, refs []string, opts BatchOpts) (*Outcome, error) {
	if len(refs) == 0 {
		return nil, shared.ErrNoReferences
	}

	workers := opts.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	workers = ClampWorkers(workers)

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan string, len(refs))
	results := make(chan Result, len(refs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, ref := range refs {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					// Cancellation mid-dispatch: the reference still
					// resolves to a failure rather than vanishing.
					results <- Result{Reference: ref, Err: fmt.Errorf("dispatch cancelled: %w", err)}
					continue
				}
			}
			jobs <- ref
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcome := &Outcome{}
	for res := range results {
		outcome.add(res)
	}

	p.logger.Info("batch complete",
		"total", outcome.Total(),
		"succeeded", len(outcome.Successes),
		"failed", len(outcome.Failures),
		"workers", workers,
	)
	return outcome, nil
}

// worker drains the jobs channel, producing exactly one Result per reference.
func (p *Processor) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, results chan<- Result) {
	defer wg.Done()
	for ref := range jobs {
		results <- p.safeProcess(ctx, ref)
	}
}

// safeProcess converts a processor panic into a Failure result so a single
// item can never take down the batch or drop sibling work.
func (p *Processor) safeProcess(ctx context.Context, ref string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("item processor panic", "ref", ref, "panic", r)
			res = Result{Reference: ref, Err: fmt.Errorf("unexpected error: %v", r)}
		}
	}()
	return p.Process(ctx, ref)
}
