package matching

import (
	"sync"
)

// Match pairs every source item with its highest-scoring target item and keeps
// the pairs whose score reaches opts.Threshold.
//
// Targets are scanned in order and a later target must score strictly higher
// to replace the current best, so the earliest target wins ties. A target may
// be the best match for any number of source items. Results follow source
// order regardless of opts.Workers.
func Match(source, target []Item, opts Options) []Result {
	scorer := Scorer{Weights: opts.Weights, MaxTextLen: opts.MaxTextLen}

	workers := opts.Workers
	if workers > len(source) {
		workers = len(source)
	}
	if workers <= 1 {
		results := make([]Result, 0, len(source))
		for _, a := range source {
			if r, ok := bestMatch(scorer, a, target, opts.Threshold); ok {
				results = append(results, r)
			}
		}
		return results
	}

	// Each worker writes only its own slots, so no locking is needed.
	found := make([]Result, len(source))
	accepted := make([]bool, len(source))

	jobs := make(chan int, len(source))
	for i := range source {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				found[i], accepted[i] = bestMatch(scorer, source[i], target, opts.Threshold)
			}
		}()
	}
	wg.Wait()

	results := make([]Result, 0, len(source))
	for i, ok := range accepted {
		if ok {
			results = append(results, found[i])
		}
	}
	return results
}

// bestMatch scans target for the item scoring highest against a.
func bestMatch(scorer Scorer, a Item, target []Item, threshold float64) (Result, bool) {
	var (
		bestScore float64
		best      *Item
	)
	for i := range target {
		s := scorer.Score(a, target[i])
		if s > bestScore {
			bestScore = s
			best = &target[i]
		}
	}

	if best == nil || bestScore < threshold {
		return Result{}, false
	}
	return Result{Source: a, Target: *best, Score: bestScore}, true
}
