package genetic

import (
	"context"
	"iter"

	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
)

// Handle is a running (or finished) solve. It is safe for concurrent use:
// one goroutine may block on Result while others poll Progress or Cancel.
type Handle struct {
	cancel context.CancelFunc
	engine *Engine
	done   chan struct{}
	result *solver.Result
}

// Start validates the configuration, launches the generation loop in its
// own goroutine and returns immediately. Configuration errors are reported
// before any generation runs.
func Start(ctx context.Context, puzzle *nonogram.Puzzle, cfg solver.Config) (*Handle, error) {
	engine, err := New(puzzle, cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		engine: engine,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		h.result = engine.Run(ctx)
		close(h.done)
	}()
	return h, nil
}

// Cancel requests a cooperative stop. The engine observes it at the next
// generation boundary; an in-flight evaluation batch finishes first.
// Idempotent, and a no-op once the run is terminal.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the run reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Progress returns a lazy, restartable sequence of generation statistics.
// It may be consumed incrementally while the run is in progress and drained
// fully afterwards.
func (h *Handle) Progress() iter.Seq[solver.GenerationStats] {
	return h.engine.Tracker().All()
}

// Stats returns the run's convergence log for indexed access.
func (h *Handle) Stats() *Tracker {
	return h.engine.Tracker()
}

// Result blocks until the run reaches a terminal state and returns it.
// Subsequent calls return immediately.
func (h *Handle) Result() *solver.Result {
	<-h.done
	return h.result
}
