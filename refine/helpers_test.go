package refine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/skillsenselab/refinekit/completion"
	"github.com/skillsenselab/refinekit/logger"
	"github.com/skillsenselab/refinekit/transcript"
)

// scriptedProvider computes responses from the request and keeps call
// accounting for concurrency assertions.
type scriptedProvider struct {
	respond func(req completion.Request) (*completion.Response, error)

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	mu   sync.Mutex
	reqs []completion.Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *scriptedProvider) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	p.calls.Add(1)
	cur := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if cur <= seen || p.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()

	if p.respond == nil {
		return &completion.Response{Content: echoSentences(req), Model: "scripted"}, nil
	}
	return p.respond(req)
}

func (p *scriptedProvider) requests() []completion.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]completion.Request, len(p.reqs))
	copy(out, p.reqs)
	return out
}

// echoSentences builds an index-mode payload with one sentence per indexed
// input line, so every segment comes back claimed by exactly one sentence.
func echoSentences(req completion.Request) string {
	var entries []string
	for _, line := range strings.Split(req.Prompt, "\n") {
		var idx int
		if _, err := fmt.Sscanf(line, "[%d]", &idx); err == nil {
			entries = append(entries, fmt.Sprintf(
				`{"text":"Segment %d.","start":%d,"end":%d}`, idx, idx, idx))
		}
	}
	return `{"sentences":[` + strings.Join(entries, ",") + `]}`
}

func quietLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(&logger.Config{Level: "fatal", Format: "json", Output: "stderr"}, "test")
}

func newTestEngine(t *testing.T, p completion.Provider, cfg Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger(t))}, opts...)
	eng, err := New(p, cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func makeSegments(n int) []transcript.Segment {
	segs := make([]transcript.Segment, n)
	for i := range segs {
		segs[i] = transcript.Segment{
			Text:  fmt.Sprintf("seg %d", i),
			Start: float64(i),
			End:   float64(i) + 1,
		}
	}
	return segs
}
