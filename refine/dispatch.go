package refine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/refinekit/logger"
	"github.com/skillsenselab/refinekit/observability"
	"github.com/skillsenselab/refinekit/transcript"
)

// ProgressFunc receives coarse dispatch progress as completed and total
// chunk counts. It is invoked at most once per completed batch, on its own
// goroutine; a slow or panicking observer never blocks a run.
type ProgressFunc func(completed, total int)

// runBatches executes fn for every chunk in batches of size concurrency,
// with a full join barrier between batches. Fail-fast: when any chunk in a
// batch errors, dispatch stops after that batch's barrier and the error of
// the lowest-index failing chunk is returned; later batches never start.
// After each clean batch, notify is called once with the completed count.
func runBatches(ctx context.Context, chunks []Chunk, concurrency int, notify func(completed, total int), fn func(ctx context.Context, c Chunk) error) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	total := len(chunks)

	for off := 0; off < total; off += concurrency {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := off + concurrency
		if end > total {
			end = total
		}
		batch := chunks[off:end]
		errs := make([]error, len(batch))

		var wg sync.WaitGroup
		for i, c := range batch {
			wg.Add(1)
			go func(slot int, c Chunk) {
				defer wg.Done()
				errs[slot] = fn(ctx, c)
			}(i, c)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		if notify != nil {
			notify(end, total)
		}
	}
	return nil
}

// dispatch runs the chunk plan against the completion provider and returns
// one parsed Result per chunk, indexed by chunk. Each worker writes only
// its own slot, so the result slice needs no locking.
func (e *Engine) dispatch(ctx context.Context, segs []transcript.Segment, chunks []Chunk, notifier *progressNotifier) ([]Result, error) {
	results := make([]Result, len(chunks))

	err := runBatches(ctx, chunks, e.cfg.Concurrency, notifier.notify, func(ctx context.Context, c Chunk) error {
		res, err := e.correctChunk(ctx, segs, c)
		if err != nil {
			return err
		}
		results[c.Index] = *res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// correctChunk sends one chunk to the corrector and parses its payload.
func (e *Engine) correctChunk(ctx context.Context, segs []transcript.Segment, c Chunk) (*Result, error) {
	ctx = logger.ContextWithCallID(ctx, uuid.NewString())
	ctx, span := observability.StartSpan(ctx, observability.SpanChunkDispatch)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrChunkIndex, c.Index)

	log := e.log.WithContext(ctx)
	start := time.Now()

	req := e.builder.BuildChunk(c, segs[c.Start:c.End+1], e.dict)
	if req.Temperature == 0 {
		req.Temperature = e.cfg.Temperature
	}

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		e.metrics.RecordChunk(ctx, "error", time.Since(start))
		observability.SetSpanError(ctx, err)
		return nil, NewServiceError(c.Index, err)
	}

	frags, err := parseSentences(c.Index, resp.Content)
	if err != nil {
		e.metrics.RecordChunk(ctx, "error", time.Since(start))
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	e.metrics.RecordChunk(ctx, "ok", time.Since(start))
	log.Debug("chunk corrected", logger.Fields(
		logger.FieldChunk, c.Index,
		logger.FieldSegments, c.Size(),
		logger.FieldFragments, len(frags),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return &Result{Chunk: c.Index, Fragments: frags}, nil
}

// progressNotifier delivers throttled progress to a caller-supplied sink
// without ever blocking dispatch. Updates go through a one-slot channel
// with a non-blocking send: when the observer is still busy, the stale
// pending update is replaced by the newer one. Observer panics are
// swallowed. A nil notifier is a no-op, so the dispatch path never
// branches on whether progress reporting is configured.
type progressNotifier struct {
	fn   ProgressFunc
	ch   chan progressUpdate
	done chan struct{}
}

type progressUpdate struct {
	completed int
	total     int
}

func newProgressNotifier(fn ProgressFunc) *progressNotifier {
	if fn == nil {
		return nil
	}
	n := &progressNotifier{
		fn:   fn,
		ch:   make(chan progressUpdate, 1),
		done: make(chan struct{}),
	}
	go n.loop()
	return n
}

func (n *progressNotifier) loop() {
	defer close(n.done)
	for u := range n.ch {
		n.deliver(u)
	}
}

func (n *progressNotifier) deliver(u progressUpdate) {
	defer func() {
		// A panicking observer must not take the run down with it.
		_ = recover()
	}()
	n.fn(u.completed, u.total)
}

// notify is fire-and-forget; it never blocks the caller.
func (n *progressNotifier) notify(completed, total int) {
	if n == nil {
		return
	}
	u := progressUpdate{completed: completed, total: total}
	select {
	case n.ch <- u:
		return
	default:
	}
	// Slot taken: drop the stale update in favor of the newer one.
	select {
	case <-n.ch:
	default:
	}
	select {
	case n.ch <- u:
	default:
	}
}

// close flushes the pending update, if any, and waits for the delivery
// goroutine to exit.
func (n *progressNotifier) close() {
	if n == nil {
		return
	}
	close(n.ch)
	<-n.done
}
