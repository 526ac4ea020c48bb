package ingest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/fetch"
	"github.com/pders01/shelf/internal/metrics"
)

const defaultConcurrency = 8

// Result is the outcome of one ingestion run. Records are in location order.
type Result struct {
	Source   string
	Records  []article.Record
	Failed   int
	Duration time.Duration
}

type Ingester struct {
	source      Source
	fetcher     *fetch.Fetcher
	extractor   *Extractor
	concurrency int
	metrics     *metrics.Metrics
}

type Option func(*Ingester)

func WithMetrics(m *metrics.Metrics) Option {
	return func(in *Ingester) { in.metrics = m }
}

func WithConcurrency(n int) Option {
	return func(in *Ingester) {
		if n > 0 {
			in.concurrency = n
		}
	}
}

func New(source Source, f *fetch.Fetcher, extractor *Extractor, opts ...Option) *Ingester {
	in := &Ingester{
		source:      source,
		fetcher:     f,
		extractor:   extractor,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// NewFromConfig wires a source, extractor and worker limit from cfg.
func NewFromConfig(cfg *config.Config, f *fetch.Fetcher, opts ...Option) (*Ingester, error) {
	source, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	extractor := NewExtractor(f, Selectors{
		Title:   cfg.Extract.TitleSelector,
		Summary: cfg.Extract.SummarySelector,
	}, cfg.Extract.SummaryMaxLength)

	opts = append([]Option{WithConcurrency(cfg.Fetch.Concurrency)}, opts...)
	return New(source, f, extractor, opts...), nil
}

func (in *Ingester) SourceName() string {
	return in.source.Name()
}

// Ingest resolves the source and enriches every location. The only error
// it returns is a *SourceError; per-article failures become placeholder
// records and are counted in Result.Failed.
func (in *Ingester) Ingest(ctx context.Context) (*Result, error) {
	start := time.Now()
	name := in.source.Name()
	logger := debuglog.WithFields(map[string]any{"source": name})

	entries, err := in.source.Resolve(ctx, in.fetcher)
	if err != nil {
		serr := &SourceError{Source: name, Err: err}
		logger.Errorf("resolving source: %v", err)
		in.metrics.ObserveIngest(name, 0, 0, time.Since(start), serr)
		return nil, serr
	}

	entries = Dedupe(entries)
	logger.Infof("resolved %d locations", len(entries))

	records := make([]article.Record, len(entries))
	failed := make([]bool, len(entries))

	var g errgroup.Group
	g.SetLimit(in.concurrency)
	for i, entry := range entries {
		if entry.Complete {
			records[i] = article.New(entry.Location, entry.Title, entry.Summary)
			continue
		}
		g.Go(func() error {
			rec, err := in.extractor.Extract(ctx, entry.Location)
			if err != nil {
				logger.Warnf("%v", err)
				failed[i] = true
				rec = entry.fallback()
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{
		Source:   name,
		Records:  records,
		Duration: time.Since(start),
	}
	for _, f := range failed {
		if f {
			result.Failed++
		}
	}

	in.metrics.ObserveIngest(name, len(records)-result.Failed, result.Failed, result.Duration, nil)
	logger.Infof("ingested %d records (%d failed) in %s", len(records), result.Failed, result.Duration)
	return result, nil
}
