package refine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/refinekit/completion"
	"github.com/skillsenselab/refinekit/logger"
	"github.com/skillsenselab/refinekit/observability"
	"github.com/skillsenselab/refinekit/transcript"
)

// Engine corrects machine transcripts through a completion backend. It
// plans overlapping chunks, dispatches them with bounded concurrency,
// reconciles the overlapping answers and restores real timestamps. One
// engine is safe for concurrent runs; all per-run state lives on the stack.
type Engine struct {
	provider completion.Provider
	cfg      Config
	builder  PromptBuilder
	dict     Dictionary
	log      *logger.Logger
	metrics  *observability.Metrics
	progress ProgressFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the engine's default component logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches metric instruments. Without it the engine records
// nothing.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithProgress registers an observer for dispatch progress.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithPromptBuilder replaces the default prompt builder.
func WithPromptBuilder(b PromptBuilder) Option {
	return func(e *Engine) { e.builder = b }
}

// WithDictionary supplies domain terms the correction prompts should
// spell canonically.
func WithDictionary(d Dictionary) Option {
	return func(e *Engine) { e.dict = d }
}

// New builds an Engine around the given completion provider. Zero config
// fields take their defaults; an invalid config is rejected here rather
// than at run time.
func New(p completion.Provider, cfg Config, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, errors.New("refine: completion provider is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		provider: p,
		cfg:      cfg,
		builder:  NewPromptBuilder(),
		log:      logger.Get("refine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.builder == nil {
		e.builder = NewPromptBuilder()
	}
	if e.log == nil {
		e.log = logger.Get("refine")
	}
	return e, nil
}

// Refine corrects the transcript and regroups it into sentences. Segments
// must be ordered by time; the returned sentences carry the start of their
// first source segment and the end of their last. Some segments may go
// unclaimed near chunk boundaries when the backend reshapes sentences
// across the cutoff; gaps are dropped, never invented.
func (e *Engine) Refine(ctx context.Context, segments []transcript.Segment) ([]transcript.Sentence, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	ctx, span := observability.StartSpan(ctx, observability.SpanRefineRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)
	observability.SetSpanAttribute(ctx, observability.AttrSegmentCount, len(segments))

	log := e.log.WithContext(ctx)
	start := time.Now()

	if len(segments) == 0 {
		return nil, nil
	}
	if err := transcript.Validate(segments); err != nil {
		return nil, NewPlanningError(err.Error())
	}

	chunks, err := PlanChunks(len(segments), e.cfg)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrChunkCount, len(chunks))

	log.Info("refinement started", logger.Fields(
		logger.FieldProvider, e.provider.Name(),
		logger.FieldSegments, len(segments),
		logger.FieldChunks, len(chunks),
	))

	notifier := newProgressNotifier(e.progress)
	defer notifier.close()

	results, err := e.dispatch(ctx, segments, chunks, notifier)
	if err != nil {
		e.metrics.RecordRun(ctx, "refine", "error", time.Since(start))
		observability.SetSpanError(ctx, err)
		log.Error("refinement failed", logger.MergeWithError(
			logger.Fields(logger.FieldChunk, FailedChunk(err)), err))
		return nil, err
	}

	recs := e.reconcile(ctx, results, chunks, len(segments))
	sentences := restamp(recs, segments)

	e.metrics.RecordRun(ctx, "refine", "ok", time.Since(start))
	observability.SetSpanAttribute(ctx, observability.AttrSentenceCount, len(sentences))
	log.Info("refinement complete", logger.Fields(
		logger.FieldSegments, len(segments),
		logger.FieldChunks, len(chunks),
		logger.FieldSentences, len(sentences),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return sentences, nil
}

// Subtitle corrects a short slice of segments and returns display cues.
// The slice must fit in a single chunk. Corrected fragments are located
// back in the original text, wrapped to the configured line length and
// timed by interpolating rune positions inside their source segments.
func (e *Engine) Subtitle(ctx context.Context, segments []transcript.Segment) ([]transcript.Cue, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	ctx, span := observability.StartSpan(ctx, observability.SpanSubtitleRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)
	observability.SetSpanAttribute(ctx, observability.AttrSegmentCount, len(segments))

	log := e.log.WithContext(ctx)
	start := time.Now()

	if len(segments) == 0 {
		return nil, nil
	}
	if err := transcript.Validate(segments); err != nil {
		return nil, NewPlanningError(err.Error())
	}
	if len(segments) > e.cfg.MaxChunkSegments {
		return nil, NewPlanningError(fmt.Sprintf(
			"slice of %d segments exceeds the single-chunk limit of %d",
			len(segments), e.cfg.MaxChunkSegments))
	}

	norm := transcript.NormalizeRun(segments)
	if norm.RuneLen() == 0 {
		return nil, nil
	}

	req := e.builder.BuildSlice(segments, e.dict)
	if req.Temperature == 0 {
		req.Temperature = e.cfg.Temperature
	}

	callCtx := logger.ContextWithCallID(ctx, uuid.NewString())
	resp, err := e.provider.Complete(callCtx, req)
	if err != nil {
		serr := NewServiceError(0, err)
		e.metrics.RecordRun(ctx, "subtitle", "error", time.Since(start))
		observability.SetSpanError(ctx, serr)
		log.Error("subtitle run failed", logger.MergeWithError(nil, serr))
		return nil, serr
	}

	frags, err := parseFragments(0, resp.Content)
	if err != nil {
		e.metrics.RecordRun(ctx, "subtitle", "error", time.Since(start))
		observability.SetSpanError(ctx, err)
		log.Error("subtitle run failed", logger.MergeWithError(nil, err))
		return nil, err
	}

	notifier := newProgressNotifier(e.progress)
	notifier.notify(1, 1)
	notifier.close()

	resolver := newSpanResolver(norm, log)
	cues := make([]transcript.Cue, 0, len(frags))
	for _, f := range frags {
		text := transcript.Normalize(f)
		spn := resolver.resolve(text)
		for _, part := range wrapFragment(text, spn, e.cfg.MaxLineRunes) {
			s, en := interpolateSpan(norm, segments, part.span.From, part.span.To)
			cues = append(cues, transcript.Cue{Text: part.text, Start: s, End: en})
		}
	}

	e.metrics.AddFragmentsAccepted(ctx, len(frags))
	e.metrics.RecordRun(ctx, "subtitle", "ok", time.Since(start))
	log.Info("subtitle run complete", logger.Fields(
		logger.FieldSegments, len(segments),
		logger.FieldFragments, len(frags),
		"cues", len(cues),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return cues, nil
}
