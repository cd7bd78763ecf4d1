package experiment

import (
	"context"
	"sync"
)

// LayoutResult is the outcome of evaluating a single layout of a
// sweep. Exactly one of Result and Err is non-nil.
type LayoutResult struct {
	Layout string
	Result *AggregateResult
	Err    error
}

// EvaluateSweep evaluates each layout in order and returns one
// LayoutResult per layout, in the order the layouts were given,
// regardless of how long each layout takes.
//
// By default, a failed layout is reported in its LayoutResult and the
// sweep continues; the returned error is then only non-nil if ctx was
// cancelled. If Config().FailFast is set, no further layouts are
// started after a layout fails, and the results up to and including the
// first failed layout are returned along with its error.
//
// Up to Config().Workers layouts are evaluated concurrently, each with
// its own agent and environment.
func (e *Evaluator) EvaluateSweep(ctx context.Context,
	layouts []string) ([]LayoutResult, error) {
	results := make([]LayoutResult, len(layouts))
	for i, layout := range layouts {
		results[i].Layout = layout
	}

	workers := e.config.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		failed  bool
		sem     = make(chan struct{}, workers)
		started = make([]bool, len(layouts))
	)

	for i, layout := range layouts {
		sem <- struct{}{}

		mu.Lock()
		stop := failed && e.config.FailFast
		mu.Unlock()
		if stop || ctx.Err() != nil {
			<-sem
			break
		}

		started[i] = true
		wg.Add(1)
		go func(i int, layout string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := e.EvaluateLayout(ctx, layout)
			if err != nil {
				results[i].Err = err
				e.logger.Error("layout failed", "layout", layout,
					"error", err)

				mu.Lock()
				failed = true
				mu.Unlock()
			} else {
				results[i].Result = &res
			}

			if e.onLayout != nil {
				e.onLayout(results[i])
			}
		}(i, layout)
	}
	wg.Wait()

	if e.config.FailFast {
		for i := range results {
			if results[i].Err != nil {
				return results[:i+1], results[i].Err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		for i := range results {
			if !started[i] {
				results[i].Err = layoutErr("evaluateSweep", results[i].Layout,
					cancelled("evaluateSweep", err))
			}
		}
		return results, cancelled("evaluateSweep", err)
	}
	return results, nil
}
