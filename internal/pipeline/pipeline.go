// Package pipeline maps variant tokens to their most severe predicted
// consequence by batching unique variants, submitting batches to an external
// annotation engine in parallel, and reassembling results in input order.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ebivariation/vepmap/internal/severity"
	"github.com/ebivariation/vepmap/internal/variant"
	"github.com/ebivariation/vepmap/internal/vep"
)

// ResultCache is an optional cross-run cache of selected consequences.
// Descriptors found in the cache are not resubmitted to the engine.
type ResultCache interface {
	Lookup(descriptors []variant.Descriptor) (map[variant.Descriptor]Selected, error)
	Save(results map[variant.Descriptor]Selected) error
}

// Pipeline runs the consequence-mapping transformation.
type Pipeline struct {
	cfg       Config
	annotator vep.Annotator
	ranker    *severity.Ranker
	cache     ResultCache
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRanker overrides the default severity ranking table.
func WithRanker(r *severity.Ranker) Option {
	return func(p *Pipeline) { p.ranker = r }
}

// WithCache attaches a cross-run result cache.
func WithCache(c ResultCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New validates the configuration and builds a Pipeline around the given
// annotation engine.
func New(cfg Config, annotator vep.Annotator, opts ...Option) (*Pipeline, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		annotator: annotator,
		ranker:    severity.Default(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run maps every input token to one output row, in input order. Malformed
// tokens are recovered locally (sentinel row, warning); engine failures are
// fatal for the run after the configured per-batch retries.
func (p *Pipeline) Run(ctx context.Context, tokens []string) ([]OutputRow, error) {
	records := make([]variant.InputRecord, len(tokens))
	malformed := 0
	for i, token := range tokens {
		rec := variant.InputRecord{Ordinal: i, Token: token}
		rec.Descriptor, rec.ParseErr = variant.Parse(token)
		if rec.ParseErr != nil {
			malformed++
			p.logger.Warn("skipping malformed variant token",
				zap.Int("ordinal", i),
				zap.Error(rec.ParseErr))
		}
		records[i] = rec
	}

	unique := dedup(records)
	p.logger.Info("input parsed",
		zap.Int("rows", len(records)),
		zap.Int("unique_variants", len(unique)),
		zap.Int("malformed", malformed))

	selected := make(map[variant.Descriptor]Selected, len(unique))
	toAnnotate := unique
	if p.cache != nil {
		cached, err := p.cache.Lookup(unique)
		if err != nil {
			return nil, fmt.Errorf("result cache lookup: %w", err)
		}
		toAnnotate = toAnnotate[:0:0]
		for _, d := range unique {
			if sel, ok := cached[d]; ok {
				selected[d] = sel
			} else {
				toAnnotate = append(toAnnotate, d)
			}
		}
		p.logger.Info("result cache consulted",
			zap.Int("hits", len(cached)),
			zap.Int("misses", len(toAnnotate)))
	}

	groups, err := p.annotateAll(ctx, batches(toAnnotate, p.cfg.BatchSize))
	if err != nil {
		return nil, err
	}

	fresh := make(map[variant.Descriptor]Selected, len(toAnnotate))
	annotated := 0
	for _, d := range toAnnotate {
		sel := selectMostSevere(groups[d], p.ranker)
		if sel.Found {
			annotated++
			fresh[d] = sel
		}
		selected[d] = sel
	}

	if p.cache != nil && len(fresh) > 0 {
		if err := p.cache.Save(fresh); err != nil {
			// The run's output is already complete; a failed save only costs
			// future cache hits.
			p.logger.Warn("result cache save failed", zap.Error(err))
		}
	}

	p.logger.Info("annotation complete",
		zap.Int("annotated", annotated),
		zap.Int("not_found", len(toAnnotate)-annotated))

	return assemble(records, selected), nil
}

// batchResult carries one batch's records (or fatal error) back from a worker.
type batchResult struct {
	records []vep.Consequence
	err     error
	batch   int
}

// annotateAll runs the batches through a fixed worker pool and regroups the
// returned records by descriptor. Batch completion order is irrelevant:
// regrouping is keyed on the originating descriptor and input ordering is
// restored later by the assembler. The first fatal batch error cancels all
// in-flight and pending work.
func (p *Pipeline) annotateAll(ctx context.Context, work [][]variant.Descriptor) (map[variant.Descriptor][]vep.Consequence, error) {
	groups := make(map[variant.Descriptor][]vep.Consequence)
	if len(work) == 0 {
		return groups, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.cfg.Concurrency
	if workers > len(work) {
		workers = len(work)
	}

	items := make(chan int)
	results := make(chan batchResult, workers)

	go func() {
		defer close(items)
		for i := range work {
			select {
			case items <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range items {
				records, err := p.annotateBatch(ctx, i, work[i])
				select {
				case results <- batchResult{records: records, err: err, batch: i}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var fatal error
	for res := range results {
		if res.err != nil {
			if fatal == nil {
				fatal = fmt.Errorf("batch %d: %w", res.batch, res.err)
				cancel()
			}
			continue
		}
		for _, rec := range res.records {
			groups[rec.Variant] = append(groups[rec.Variant], rec)
		}
	}
	if fatal != nil {
		return nil, fatal
	}
	return groups, nil
}

// annotateBatch submits one batch, retrying up to the configured count.
func (p *Pipeline) annotateBatch(ctx context.Context, idx int, batch []variant.Descriptor) ([]vep.Consequence, error) {
	var err error
	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var records []vep.Consequence
		records, err = p.annotator.Annotate(ctx, batch)
		if err == nil {
			return records, nil
		}
		if attempt < p.cfg.Retries {
			p.logger.Warn("batch failed, retrying",
				zap.Int("batch", idx),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		}
	}
	return nil, err
}
