package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
)

// --- fakes ---

type sessionKey struct {
	event string
	kind  domain.SessionKind
}

// fakeSource serves canned schedules and sessions. Sessions missing from
// the map fail to load.
type fakeSource struct {
	mu          sync.Mutex
	schedules   map[int][]domain.Event
	scheduleErr error
	sessions    map[sessionKey]domain.Session
	calls       []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		schedules: make(map[int][]domain.Event),
		sessions:  make(map[sessionKey]domain.Session),
	}
}

func (f *fakeSource) Schedule(_ context.Context, year int) ([]domain.Event, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedules[year], nil
}

func (f *fakeSource) LoadSession(_ context.Context, event domain.Event, kind domain.SessionKind) (domain.Session, error) {
	f.mu.Lock()
	f.calls = append(f.calls, event.Name+"/"+kind.String())
	f.mu.Unlock()

	s, ok := f.sessions[sessionKey{event.Name, kind}]
	if !ok {
		return domain.Session{}, fmt.Errorf("%s %s: %w", event.Name, kind, domain.ErrSessionNotFound)
	}
	return s, nil
}

// addEvent schedules a conventional event with n drivers in both sessions.
func (f *fakeSource) addEvent(year int, name string, drivers int) domain.Event {
	event := domain.Event{
		Year:        year,
		RoundNumber: len(f.schedules[year]) + 1,
		Name:        name,
		Format:      domain.FormatConventional,
	}
	f.schedules[year] = append(f.schedules[year], event)
	f.sessions[sessionKey{name, domain.Qualifying}] = makeSession(event, domain.Qualifying, drivers)
	f.sessions[sessionKey{name, domain.Race}] = makeSession(event, domain.Race, drivers)
	return event
}

func makeSession(event domain.Event, kind domain.SessionKind, drivers int) domain.Session {
	s := domain.Session{Event: event, Kind: kind}
	for i := 1; i <= drivers; i++ {
		pos := i
		points := 0.0
		code := fmt.Sprintf("D%02d", i)
		lapTime := 90.0 + float64(i)/10
		s.Results = append(s.Results, domain.Result{
			FullName:     "Driver " + code,
			Abbreviation: code,
			TeamName:     fmt.Sprintf("Team %d", (i+1)/2),
			GridPosition: &pos,
			Position:     &pos,
			Status:       "Finished",
			Points:       &points,
		})
		s.Laps = append(s.Laps, domain.Lap{Driver: code, LapNumber: 1, LapTime: &lapTime, Compound: "MEDIUM"})
	}
	return s
}

type recordingLoader struct {
	loaded []domain.Table
	err    error
}

func (l *recordingLoader) Load(_ context.Context, corpus domain.Table) error {
	if l.err != nil {
		return l.err
	}
	l.loaded = append(l.loaded, corpus)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
