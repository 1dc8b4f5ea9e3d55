package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

// lappedRe matches the gap of a lapped finisher, e.g. "+1 LAP" or "+2 LAPS".
var lappedRe = regexp.MustCompile(`(?i)^\+(\d+)\s+LAPS?$`)

// LoadSession fetches the classification, laps, stints and weather of the
// event's qualifying or race session and assembles the domain tables.
func (c *Client) LoadSession(ctx context.Context, event domain.Event, kind domain.SessionKind) (domain.Session, error) {
	sessionKey, err := c.sessionKey(ctx, event, kind)
	if err != nil {
		return domain.Session{}, err
	}
	params := url.Values{"session_key": {strconv.Itoa(sessionKey)}}

	var drivers []driver
	if err := c.get(ctx, "/drivers", params, &drivers); err != nil {
		return domain.Session{}, err
	}
	var results []sessionResult
	if err := c.get(ctx, "/session_result", params, &results); err != nil {
		return domain.Session{}, err
	}
	var grid []gridEntry
	if kind == domain.Race {
		if err := c.get(ctx, "/starting_grid", params, &grid); err != nil {
			return domain.Session{}, err
		}
	}
	var laps []lap
	if err := c.get(ctx, "/laps", params, &laps); err != nil {
		return domain.Session{}, err
	}
	var stints []stint
	if err := c.get(ctx, "/stints", params, &stints); err != nil {
		return domain.Session{}, err
	}
	var samples []weather
	if err := c.get(ctx, "/weather", params, &samples); err != nil {
		return domain.Session{}, err
	}

	codes := driverCodes(drivers)
	return domain.Session{
		Event:   event,
		Kind:    kind,
		Results: mapResults(results, drivers, grid),
		Laps:    mapLaps(laps, stints, codes),
		Weather: mapWeather(samples),
	}, nil
}

func (c *Client) sessionKey(ctx context.Context, event domain.Event, kind domain.SessionKind) (int, error) {
	if event.Key == 0 {
		return 0, fmt.Errorf("%s %d: %w", event.Name, event.Year, domain.ErrEventNotFound)
	}

	params := url.Values{
		"meeting_key":  {strconv.Itoa(event.Key)},
		"session_name": {sessionName(kind)},
	}
	var sessions []session
	if err := c.get(ctx, "/sessions", params, &sessions); err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		return 0, fmt.Errorf("%s %d %s: %w", event.Name, event.Year, kind, domain.ErrSessionNotFound)
	}
	return sessions[0].SessionKey, nil
}

func sessionName(kind domain.SessionKind) string {
	if kind == domain.Qualifying {
		return "Qualifying"
	}
	return "Race"
}

func driverCodes(drivers []driver) map[int]string {
	codes := make(map[int]string, len(drivers))
	for _, d := range drivers {
		codes[d.DriverNumber] = codeFor(d)
	}
	return codes
}

func codeFor(d driver) string {
	if d.NameAcronym != "" {
		return d.NameAcronym
	}
	return strconv.Itoa(d.DriverNumber)
}

// mapResults joins classification lines with driver identity and grid slots,
// ordered by position with unclassified drivers last.
func mapResults(results []sessionResult, drivers []driver, grid []gridEntry) []domain.Result {
	byNumber := make(map[int]driver, len(drivers))
	for _, d := range drivers {
		byNumber[d.DriverNumber] = d
	}
	gridSlots := make(map[int]*int, len(grid))
	for _, g := range grid {
		gridSlots[g.DriverNumber] = g.Position
	}

	sorted := append([]sessionResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Position, sorted[j].Position
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})

	out := make([]domain.Result, 0, len(sorted))
	for _, r := range sorted {
		d, ok := byNumber[r.DriverNumber]
		if !ok {
			d = driver{DriverNumber: r.DriverNumber}
		}
		out = append(out, domain.Result{
			FullName:     fullName(d),
			Abbreviation: codeFor(d),
			TeamName:     d.TeamName,
			GridPosition: gridSlots[r.DriverNumber],
			Position:     r.Position,
			Status:       classificationStatus(r),
			Points:       r.Points,
		})
	}
	return out
}

func fullName(d driver) string {
	if d.FirstName != "" || d.LastName != "" {
		return strings.TrimSpace(d.FirstName + " " + d.LastName)
	}
	return d.FullName
}

// classificationStatus renders the result flags as a status string:
// "Finished", "+N Lap(s)", "Retired", "Did not start" or "Disqualified".
func classificationStatus(r sessionResult) string {
	switch {
	case r.DSQ:
		return "Disqualified"
	case r.DNS:
		return "Did not start"
	case r.DNF:
		return "Retired"
	}

	var gap string
	if len(r.GapToLeader) > 0 && json.Unmarshal(r.GapToLeader, &gap) == nil {
		if m := lappedRe.FindStringSubmatch(strings.TrimSpace(gap)); m != nil {
			if m[1] == "1" {
				return "+1 Lap"
			}
			return "+" + m[1] + " Laps"
		}
	}
	return "Finished"
}

// mapLaps resolves each lap's driver code and tyre compound. A lap's
// compound comes from the driver's stint covering that lap number.
func mapLaps(laps []lap, stints []stint, codes map[int]string) []domain.Lap {
	byDriver := make(map[int][]stint)
	for _, s := range stints {
		byDriver[s.DriverNumber] = append(byDriver[s.DriverNumber], s)
	}

	out := make([]domain.Lap, 0, len(laps))
	for _, l := range laps {
		code, ok := codes[l.DriverNumber]
		if !ok {
			code = strconv.Itoa(l.DriverNumber)
		}
		dl := domain.Lap{
			Driver:    code,
			LapNumber: l.LapNumber,
			LapTime:   l.LapDuration,
			Compound:  compoundFor(byDriver[l.DriverNumber], l.LapNumber),
		}
		if l.IsPitOutLap {
			var ts string
			if l.DateStart != nil {
				ts = *l.DateStart
			}
			t := parseTime(ts)
			dl.PitOutTime = &t
		}
		out = append(out, dl)
	}
	return out
}

func compoundFor(stints []stint, lapNumber int) string {
	for _, s := range stints {
		if s.Compound == nil || s.LapStart == nil {
			continue
		}
		if lapNumber < *s.LapStart {
			continue
		}
		if s.LapEnd != nil && lapNumber > *s.LapEnd {
			continue
		}
		return strings.ToUpper(*s.Compound)
	}
	return ""
}

func mapWeather(samples []weather) []domain.WeatherSample {
	out := make([]domain.WeatherSample, 0, len(samples))
	for _, w := range samples {
		out = append(out, domain.WeatherSample{
			Temperature:   w.AirTemperature,
			Humidity:      w.Humidity,
			WindSpeed:     w.WindSpeed,
			RainIntensity: w.Rainfall,
		})
	}
	return out
}
