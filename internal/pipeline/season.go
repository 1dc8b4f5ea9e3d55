package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
)

// Skip reasons recorded on the events_skipped metric.
const (
	skipFormat     = "format"
	skipIncomplete = "incomplete"
)

// SeasonBuilder turns one year of conventional race weekends into a joined
// season table.
type SeasonBuilder struct {
	source  domain.Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSeasonBuilder creates a SeasonBuilder reading from source.
func NewSeasonBuilder(source domain.Source, logger *slog.Logger, metrics *observability.Metrics) *SeasonBuilder {
	return &SeasonBuilder{
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

// Build returns the season table for year. Events are visited in schedule
// order; an event contributes rows only when both its qualifying and race
// sessions produced rows. A schedule failure yields an empty table. The only
// error returned is the context's, when the build is interrupted.
func (b *SeasonBuilder) Build(ctx context.Context, year int) (domain.Table, error) {
	table := domain.Table{Columns: domain.SeasonColumns()}

	events, err := b.source.Schedule(ctx, year)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Table{}, ctx.Err()
		}
		b.logger.Warn("schedule load failed, skipping season", "year", year, "error", err)
		return table, nil
	}

	b.logger.Info("building season", "year", year, "events", len(events))

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return domain.Table{}, err
		}

		if event.Format != domain.FormatConventional {
			b.logger.Debug("event skipped", "year", year, "event", event.Name, "format", event.Format)
			b.metrics.EventsSkipped.WithLabelValues(skipFormat).Inc()
			continue
		}

		quali, err := b.extract(ctx, event, domain.Qualifying)
		if err != nil {
			return domain.Table{}, err
		}
		race, err := b.extract(ctx, event, domain.Race)
		if err != nil {
			return domain.Table{}, err
		}

		if len(quali) == 0 || len(race) == 0 {
			b.logger.Info("event incomplete, skipping",
				"year", year,
				"event", event.Name,
				"quali_rows", len(quali),
				"race_rows", len(race),
			)
			b.metrics.EventsSkipped.WithLabelValues(skipIncomplete).Inc()
			continue
		}

		joined := domain.JoinQualifying(race, quali)
		table.Rows = append(table.Rows, joined...)
		b.metrics.RowsProduced.Add(float64(len(joined)))
		b.logger.Debug("event added", "year", year, "event", event.Name, "rows", len(joined))
	}

	return table, nil
}

// extract loads one session and flattens it. A failed load is logged and
// yields no rows; only cancellation is reported as an error.
func (b *SeasonBuilder) extract(ctx context.Context, event domain.Event, kind domain.SessionKind) ([]domain.Row, error) {
	session, err := b.source.LoadSession(ctx, event, kind)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.Warn("session load failed, skipping",
			"year", event.Year,
			"event", event.Name,
			"session", kind.String(),
			"error", err,
		)
		b.metrics.SessionsFailed.WithLabelValues(kind.String()).Inc()
		return nil, nil
	}

	b.metrics.SessionsLoaded.WithLabelValues(kind.String()).Inc()
	return domain.ExtractSession(session), nil
}
