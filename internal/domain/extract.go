package domain

import "strings"

// ExtractSession flattens a loaded session into one row per classified
// driver, in results order. Weather is summarized once for the session and
// shared by every row.
func ExtractSession(s Session) []Row {
	weather := SummarizeWeather(s.Weather)
	rows := make([]Row, 0, len(s.Results))

	for _, res := range s.Results {
		base := Row{
			Kind:        s.Kind,
			Year:        s.Event.Year,
			RoundNumber: s.Event.RoundNumber,
			Race:        s.Event.Name,
			Driver:      res.FullName,
			Code:        res.Abbreviation,
			Team:        res.TeamName,
			Weather:     weather,
		}
		laps := lapsForDriver(s.Laps, res.Abbreviation)

		switch s.Kind {
		case Race:
			rows = append(rows, raceRow(base, res, laps))
		case Qualifying:
			rows = append(rows, qualifyingRow(base, res, laps))
		}
	}
	return rows
}

func raceRow(row Row, res Result, laps []Lap) Row {
	row.Grid = res.GridPosition
	row.FinalPos = res.Position
	row.Status = res.Status
	row.Points = res.Points
	row.AvgLapTime = meanLapTime(laps)
	row.BestLap = bestLapTime(laps)
	row.PitStops = countPitOuts(laps)

	compounds := distinctCompounds(laps)
	row.TyreStints = len(compounds)
	if len(laps) > 0 {
		joined := strings.Join(compounds, ",")
		row.TyreCompounds = &joined
	}

	if res.Position != nil {
		if *res.Position == 1 {
			row.Winner = 1
		}
		if *res.Position <= 3 {
			row.Top3 = 1
		}
	}
	return row
}

func qualifyingRow(row Row, res Result, laps []Lap) Row {
	row.QualiPos = res.Position
	row.QualiTime = bestLapTime(laps)
	return row
}

func lapsForDriver(laps []Lap, code string) []Lap {
	var out []Lap
	for _, l := range laps {
		if l.Driver == code {
			out = append(out, l)
		}
	}
	return out
}

// meanLapTime skips laps without a recorded time; nil when none remain.
func meanLapTime(laps []Lap) *float64 {
	var times []float64
	for _, l := range laps {
		if l.LapTime != nil {
			times = append(times, *l.LapTime)
		}
	}
	return mean(times)
}

func bestLapTime(laps []Lap) *float64 {
	var best *float64
	for _, l := range laps {
		if l.LapTime == nil {
			continue
		}
		if best == nil || *l.LapTime < *best {
			v := *l.LapTime
			best = &v
		}
	}
	return best
}

func countPitOuts(laps []Lap) int {
	n := 0
	for _, l := range laps {
		if l.PitOutTime != nil {
			n++
		}
	}
	return n
}

// distinctCompounds returns the known compounds in first-seen order.
func distinctCompounds(laps []Lap) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range laps {
		if l.Compound == "" || seen[l.Compound] {
			continue
		}
		seen[l.Compound] = true
		out = append(out, l.Compound)
	}
	return out
}
