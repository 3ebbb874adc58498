package genetic

import "sync"

// evaluate scores every individual in the slice. Each individual's fitness
// depends only on its own grid and the immutable puzzle, so the batch is
// scattered across Workers goroutines with no synchronization beyond the
// final join: every worker writes only the slots it drew from the index
// channel.
func (e *Engine) evaluate(batch []individual) {
	workers := e.cfg.Workers
	if workers > len(batch) {
		workers = len(batch)
	}
	if workers <= 1 {
		for i := range batch {
			batch[i].fitness = e.eval.Score(batch[i].grid, e.puzzle)
		}
		return
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				batch[i].fitness = e.eval.Score(batch[i].grid, e.puzzle)
			}
		}()
	}
	for i := range batch {
		indices <- i
	}
	close(indices)
	wg.Wait()
}
