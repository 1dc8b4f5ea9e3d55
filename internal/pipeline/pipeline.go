package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
)

// ErrEmptyCorpus is returned when no requested season produced any rows.
var ErrEmptyCorpus = errors.New("empty corpus")

// SeasonSource builds the table for one year.
type SeasonSource interface {
	Build(ctx context.Context, year int) (domain.Table, error)
}

// Loader writes a finished corpus to a destination.
type Loader interface {
	Load(ctx context.Context, corpus domain.Table) error
}

// Loaders fans a corpus out to several destinations in order, stopping at
// the first failure.
type Loaders []Loader

func (ls Loaders) Load(ctx context.Context, corpus domain.Table) error {
	for _, l := range ls {
		if err := l.Load(ctx, corpus); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline builds the multi-season corpus and hands it to the loader.
type Pipeline struct {
	seasons SeasonSource
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New creates a Pipeline with the given stages and observability.
func New(seasons SeasonSource, loader Loader, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	return &Pipeline{
		seasons: seasons,
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// Run builds every season in years order, concatenates the non-empty ones
// and loads the result. Nothing is loaded when every season is empty.
func (p *Pipeline) Run(ctx context.Context, years []int) (domain.Table, error) {
	start := p.clock.Now()
	p.logger.Info("corpus build started", "years", years)

	seasons := make([]domain.Table, 0, len(years))
	for _, year := range years {
		season, err := p.seasons.Build(ctx, year)
		if err != nil {
			return domain.Table{}, fmt.Errorf("build season %d: %w", year, err)
		}
		if season.Empty() {
			p.logger.Warn("season produced no rows", "year", year)
			continue
		}
		p.logger.Info("season built", "year", year, "rows", season.Len())
		p.metrics.SeasonsBuilt.Inc()
		seasons = append(seasons, season)
	}

	if len(seasons) == 0 {
		return domain.Table{}, fmt.Errorf("%w: no season produced rows for years %v", ErrEmptyCorpus, years)
	}

	corpus := domain.Concat(seasons...)
	if err := p.loader.Load(ctx, corpus); err != nil {
		return domain.Table{}, fmt.Errorf("load corpus: %w", err)
	}

	elapsed := p.clock.Since(start)
	p.metrics.CorpusRows.Set(float64(corpus.Len()))
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.logger.Info("corpus build finished", "rows", corpus.Len(), "seasons", len(seasons), "duration", elapsed)

	return corpus, nil
}
