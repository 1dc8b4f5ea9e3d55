package domain

import (
	"strconv"
)

// Column names, in the order they appear in the persisted corpus.
const (
	ColYear          = "Year"
	ColRoundNumber   = "RoundNumber"
	ColRace          = "Race"
	ColDriver        = "Driver"
	ColCode          = "Code"
	ColTeam          = "Team"
	ColAvgTemp       = "AvgTemp"
	ColRainFlag      = "RainFlag"
	ColAvgHumidity   = "AvgHumidity"
	ColWindSpeed     = "WindSpeed"
	ColGrid          = "Grid"
	ColFinalPos      = "FinalPos"
	ColStatus        = "Status"
	ColPoints        = "Points"
	ColAvgLapTime    = "AvgLapTime"
	ColBestLap       = "BestLap"
	ColPitStops      = "PitStops"
	ColTyreStints    = "TyreStints"
	ColTyreCompounds = "TyreCompounds"
	ColWinner        = "Winner"
	ColTop3          = "Top3"
	ColQualiPos      = "QualiPos"
	ColQualiTime     = "QualiTime"
)

var baseColumns = []string{
	ColYear, ColRoundNumber, ColRace, ColDriver, ColCode, ColTeam,
	ColAvgTemp, ColRainFlag, ColAvgHumidity, ColWindSpeed,
}

var raceOnlyColumns = []string{
	ColGrid, ColFinalPos, ColStatus, ColPoints, ColAvgLapTime, ColBestLap,
	ColPitStops, ColTyreStints, ColTyreCompounds, ColWinner, ColTop3,
}

var qualifyingOnlyColumns = []string{ColQualiPos, ColQualiTime}

// RaceColumns is the shape of a race row before the qualifying join.
func RaceColumns() []string { return concatColumns(baseColumns, raceOnlyColumns) }

// QualifyingColumns is the shape of a qualifying row.
func QualifyingColumns() []string { return concatColumns(baseColumns, qualifyingOnlyColumns) }

// SeasonColumns is the shape of a race row after the qualifying join.
func SeasonColumns() []string {
	return concatColumns(baseColumns, raceOnlyColumns, qualifyingOnlyColumns)
}

func concatColumns(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Key identifies a driver within an event.
type Key struct {
	Year int
	Race string
	Code string
}

// Row is one driver's line for one session. Race-only and qualifying-only
// fields are meaningful only for the matching Kind; a race row gains the
// qualifying fields once joined.
type Row struct {
	Kind SessionKind

	Year        int
	RoundNumber int
	Race        string
	Driver      string
	Code        string
	Team        string
	Weather     WeatherSummary

	Grid          *int
	FinalPos      *int
	Status        string
	Points        *float64
	AvgLapTime    *float64
	BestLap       *float64
	PitStops      int
	TyreStints    int
	TyreCompounds *string
	Winner        int
	Top3          int

	QualiPos  *int
	QualiTime *float64
}

// Key returns the join key of the row.
func (r Row) Key() Key {
	return Key{Year: r.Year, Race: r.Race, Code: r.Code}
}

// Value returns the typed value of a column, or nil when it is null or not
// part of the row.
func (r Row) Value(column string) any {
	switch column {
	case ColYear:
		return r.Year
	case ColRoundNumber:
		return r.RoundNumber
	case ColRace:
		return r.Race
	case ColDriver:
		return r.Driver
	case ColCode:
		return r.Code
	case ColTeam:
		return r.Team
	case ColAvgTemp:
		return deref(r.Weather.AvgTemp)
	case ColRainFlag:
		return deref(r.Weather.RainFlag)
	case ColAvgHumidity:
		return deref(r.Weather.AvgHumidity)
	case ColWindSpeed:
		return deref(r.Weather.WindSpeed)
	case ColGrid:
		return deref(r.Grid)
	case ColFinalPos:
		return deref(r.FinalPos)
	case ColStatus:
		return r.Status
	case ColPoints:
		return deref(r.Points)
	case ColAvgLapTime:
		return deref(r.AvgLapTime)
	case ColBestLap:
		return deref(r.BestLap)
	case ColPitStops:
		return r.PitStops
	case ColTyreStints:
		return r.TyreStints
	case ColTyreCompounds:
		return deref(r.TyreCompounds)
	case ColWinner:
		return r.Winner
	case ColTop3:
		return r.Top3
	case ColQualiPos:
		return deref(r.QualiPos)
	case ColQualiTime:
		return deref(r.QualiTime)
	default:
		return nil
	}
}

// Field formats a column for delimited output. Nulls become empty strings.
func (r Row) Field(column string) string {
	return FormatValue(r.Value(column))
}

// FormatValue renders a column value the way the corpus file stores it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
