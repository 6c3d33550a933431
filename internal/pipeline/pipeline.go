package pipeline

import (
	"context"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
	"github.com/leonmuri/Progol-aleatorio2/internal/scraper"
	"github.com/leonmuri/Progol-aleatorio2/internal/synthetic"
)

// Source returns the raw Progol page. *scraper.Fetcher is the production
// implementation.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Pipeline resolves matches and draw info for one session.
type Pipeline struct {
	source    Source
	generator *synthetic.Generator
	now       func() time.Time
	cache     *Cache
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithSource replaces the default fetcher.
func WithSource(src Source) Option {
	return func(p *Pipeline) {
		p.source = src
	}
}

// WithGenerator replaces the default synthetic roster.
func WithGenerator(g *synthetic.Generator) Option {
	return func(p *Pipeline) {
		p.generator = g
	}
}

// WithClock sets the acquisition clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline reading the official page.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		generator: synthetic.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		p.source = scraper.NewFetcher()
	}
	p.cache = NewCache(p.run)
	return p
}

// Resolve returns the current entry, fetching on the first call or when
// force is set.
func (p *Pipeline) Resolve(ctx context.Context, force bool) Entry {
	return p.cache.GetOrResolve(ctx, force)
}

// ResolveMatches returns between 1 and draw.MaxMatches records with
// contiguous positions.
func (p *Pipeline) ResolveMatches(ctx context.Context, force bool) []draw.MatchRecord {
	return p.Resolve(ctx, force).Matches
}

// ResolveDrawInfo returns the draw info. DrawDate is always set.
func (p *Pipeline) ResolveDrawInfo(ctx context.Context, force bool) draw.DrawInfo {
	return p.Resolve(ctx, force).Info
}

// Cached returns the last resolved entry, if any, without fetching.
func (p *Pipeline) Cached() (Entry, bool) {
	return p.cache.Peek()
}

// run performs one full resolution. Every stage failure falls through to
// the next stage.
func (p *Pipeline) run(ctx context.Context) Entry {
	start := time.Now()
	now := p.now()

	var structured, patterns scraper.PartialResult

	raw, err := p.source.Fetch(ctx)
	if err != nil {
		logger.Warn("fetching progol page failed, using fallback data", nil, err)
	} else {
		structured, err = scraper.ExtractStructured(raw, now)
		if err != nil {
			logger.Debug("structured extraction found nothing", logger.Fields{"error": err.Error()})
		}
		if !structured.Complete() {
			patterns = scraper.MatchPatterns(scraper.ExtractReadableText(raw), now)
		}
	}

	matches := draw.FirstResolved(
		func() draw.Outcome[[]draw.MatchRecord] { return matchesFrom(structured, draw.StageStructured) },
		func() draw.Outcome[[]draw.MatchRecord] { return matchesFrom(patterns, draw.StagePattern) },
		func() draw.Outcome[[]draw.MatchRecord] {
			m, _ := p.generator.Synthesize(now)
			return draw.Resolved(m, draw.StageSynthetic)
		},
	)

	info := draw.FirstResolved(
		func() draw.Outcome[draw.DrawInfo] { return infoFrom(structured, patterns, now) },
		func() draw.Outcome[draw.DrawInfo] {
			_, i := p.generator.Synthesize(now)
			return draw.Resolved(i, draw.StageSynthetic)
		},
	)

	entry := Entry{
		Matches:    matches.Value,
		Info:       info.Value,
		MatchStage: matches.Stage,
		InfoStage:  info.Stage,
		AcquiredAt: now,
	}

	logger.IncrCounter("pipeline.stage." + string(entry.MatchStage))
	logger.IncrCounter("pipeline.stage." + string(entry.InfoStage))
	logger.RecordTiming("pipeline.resolve", time.Since(start))
	logger.Info("progol draw resolved", logger.Fields{
		"matches":     len(entry.Matches),
		"match_stage": entry.MatchStage,
		"info_stage":  entry.InfoStage,
		"draw_date":   entry.Info.DrawDate.Format("2006-01-02"),
		"round":       entry.Info.Round("unknown"),
	})

	return entry
}

func matchesFrom(r scraper.PartialResult, stage draw.Stage) draw.Outcome[[]draw.MatchRecord] {
	if len(r.Matches) == 0 {
		return draw.Unresolved[[]draw.MatchRecord]()
	}
	return draw.Resolved(draw.Renumber(r.Matches), stage)
}

// infoFrom merges the draw-info fields of both extraction stages, primary
// first. The stage is pattern as soon as one field came from text.
func infoFrom(structured, patterns scraper.PartialResult, now time.Time) draw.Outcome[draw.DrawInfo] {
	merged := structured.Merge(patterns)
	if !merged.HasInfo() {
		return draw.Unresolved[draw.DrawInfo]()
	}

	info := draw.DrawInfo{
		PrizeAmount: merged.Prize,
		DrawDate:    merged.Date,
		RoundNumber: merged.Round,
	}
	if info.DrawDate.IsZero() {
		info.DrawDate = draw.NextSunday(now)
	}

	stage := draw.StageStructured
	if (structured.Prize == nil && patterns.Prize != nil) ||
		(structured.Date.IsZero() && !patterns.Date.IsZero()) ||
		(structured.Round == nil && patterns.Round != nil) {
		stage = draw.StagePattern
	}

	return draw.Resolved(info.Clone(), stage)
}
