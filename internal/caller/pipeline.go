package caller

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-vdb/internal/genome"
	"github.com/inodb/vibe-vdb/internal/reads"
)

// ReadSource yields reads one at a time, returning nil, nil at the end.
type ReadSource interface {
	Next() (*reads.Read, error)
}

// WorkItem holds a read ready for script computation and walking.
type WorkItem struct {
	Seq  int
	Read *reads.Read
}

// WorkResult holds the events of a single read.
type WorkResult struct {
	Seq    int
	Read   *reads.Read
	Events *ReadEvents
	Err    error
}

// RunStats counts reads processed by a Caller.
type RunStats struct {
	Reads      int
	Skipped    int
	Candidates int
}

// Caller runs reads through script computation and the interpreter and
// folds the results into an index.
type Caller struct {
	ref     *genome.Sequence
	scripts ScriptProvider
	interp  *Interpreter
	index   *Index
	logger  *zap.Logger
	stats   RunStats
}

// NewCaller creates a caller that writes into index.
func NewCaller(ref *genome.Sequence, scripts ScriptProvider, interp *Interpreter, index *Index) *Caller {
	return &Caller{
		ref:     ref,
		scripts: scripts,
		interp:  interp,
		index:   index,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (c *Caller) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Stats returns the counters accumulated so far.
func (c *Caller) Stats() RunStats {
	return c.stats
}

// events computes the script of read and walks it. It touches no shared
// state and is safe to call from several goroutines.
func (c *Caller) events(read *reads.Read) (*ReadEvents, error) {
	script, err := c.scripts.Script(read, c.ref)
	if err != nil {
		return nil, fmt.Errorf("align read %s: %w", read.Name, err)
	}
	read.Script = script
	return c.interp.Walk(read, c.ref)
}

// apply folds one read's outcome into the index. Only fatal errors are
// returned; other failures skip the read.
func (c *Caller) apply(read *reads.Read, ev *ReadEvents, err error) error {
	c.stats.Reads++
	if err != nil {
		if IsFatal(err) {
			return err
		}
		c.stats.Skipped++
		c.logger.Warn("skipping read",
			zap.String("read", read.Name),
			zap.String("chrom", read.Chrom),
			zap.Int64("pos", read.Pos),
			zap.Error(err))
		return nil
	}
	c.stats.Candidates += len(ev.Candidates)
	c.index.Apply(ev)
	return nil
}

// CallAll consumes src until it is exhausted. With workers <= 1 each read is
// processed fully before the next is read. Otherwise reads are walked by a
// worker pool and merged in input order by a single collector, which gives
// the same counts as the sequential path.
func (c *Caller) CallAll(ctx context.Context, src ReadSource, workers int) error {
	if workers <= 1 {
		return c.callSequential(ctx, src)
	}
	return c.callParallel(ctx, src, workers)
}

func (c *Caller) callSequential(ctx context.Context, src ReadSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		read, err := src.Next()
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if read == nil {
			return nil
		}
		ev, err := c.events(read)
		if err := c.apply(read, ev, err); err != nil {
			return err
		}
	}
}

func (c *Caller) callParallel(ctx context.Context, src ReadSource, workers int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem, 2*workers)
	var readErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			read, err := src.Next()
			if err != nil {
				readErr = fmt.Errorf("read stream: %w", err)
				return
			}
			if read == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Read: read}:
				seq++
			case <-ctx.Done():
				return
			}
		}
	}()

	results := c.ParallelWalk(items, workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if err := c.apply(r.Read, r.Events, r.Err); err != nil {
			cancel()
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}
	return ctx.Err()
}

// ParallelWalk walks work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Caller) ParallelWalk(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				ev, err := c.events(item.Read)
				results <- WorkResult{
					Seq:    item.Seq,
					Read:   item.Read,
					Events: ev,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
