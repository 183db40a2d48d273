package dynamo

import (
	"runtime"
	"sync"
)

// ParallelFor calls fn on contiguous sub-ranges of [0, n), each at least
// minChunk long, using at most GOMAXPROCS goroutines. Small inputs run on
// the calling goroutine.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	minChunk = max(minChunk, 1)
	workers := min(runtime.GOMAXPROCS(0), n/minChunk)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(start, min(start+chunk, n))
	}
	wg.Wait()
}
