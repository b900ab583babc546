// Package parallel contains the bounded worker primitives used for dataset scans and batch prefetching.
package parallel

import "sync"

// ForEach runs body for every integer in [0, length) on at most limit goroutines.
// Once a body returns an error no further indices are started; the error with
// the lowest index among those that failed is returned.
func ForEach(length, limit int, body func(i int) error) error {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		errIndex = length
	)
	sem := make(chan struct{}, limit)

	for i := 0; i < length; i++ {
		mu.Lock()
		stop := firstErr != nil
		mu.Unlock()
		if stop {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := body(i); err != nil {
				mu.Lock()
				if i < errIndex {
					firstErr, errIndex = err, i
				}
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
