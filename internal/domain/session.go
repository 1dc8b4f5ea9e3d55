package domain

import (
	"context"
	"errors"
	"time"
)

// Event formats as classified by the schedule. Only conventional weekends
// feed the dataset.
const (
	FormatConventional     = "conventional"
	FormatSprint           = "sprint"
	FormatSprintShootout   = "sprint_shootout"
	FormatSprintQualifying = "sprint_qualifying"
	FormatTesting          = "testing"
)

var (
	// ErrEventNotFound is returned when the source has no event matching the request.
	ErrEventNotFound = errors.New("event not found")

	// ErrSessionNotFound is returned when the event exists but the session was not run.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionKind identifies a timed session within an event.
type SessionKind string

const (
	Qualifying SessionKind = "Q"
	Race       SessionKind = "R"
)

func (k SessionKind) String() string {
	switch k {
	case Qualifying:
		return "qualifying"
	case Race:
		return "race"
	default:
		return string(k)
	}
}

// Event is one race weekend in a season schedule.
type Event struct {
	Year        int
	RoundNumber int
	Name        string
	Format      string
	Date        time.Time

	// Key is the upstream identifier used to look up the event's sessions.
	Key int
}

// Result is one driver's line in a session's classification.
type Result struct {
	FullName     string
	Abbreviation string
	TeamName     string
	GridPosition *int
	Position     *int
	Status       string
	Points       *float64
}

// Lap is one timed lap. Nil fields were not recorded by the timing source.
type Lap struct {
	Driver     string
	LapNumber  int
	LapTime    *float64 // seconds
	PitOutTime *time.Time
	Compound   string // empty when unknown
}

// WeatherSample is one reading from the session's weather channel. A column
// counts as absent for the session when no sample carries it.
type WeatherSample struct {
	Temperature   *float64
	Humidity      *float64
	WindSpeed     *float64
	RainIntensity *float64
}

// Session is a loaded timed session: its classification, laps and weather.
type Session struct {
	Event   Event
	Kind    SessionKind
	Results []Result
	Laps    []Lap
	Weather []WeatherSample
}

// Source provides season schedules and loaded sessions from a timing-data provider.
type Source interface {
	// Schedule returns every event of the season in calendar order.
	Schedule(ctx context.Context, year int) ([]Event, error)

	// LoadSession fetches the results, laps and weather of one session.
	LoadSession(ctx context.Context, event Event, kind SessionKind) (Session, error)
}
