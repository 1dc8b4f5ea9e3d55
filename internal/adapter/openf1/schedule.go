package openf1

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

// Schedule returns the season's meetings in calendar order with a format
// classification and a round number. Testing meetings keep round 0.
func (c *Client) Schedule(ctx context.Context, year int) ([]domain.Event, error) {
	params := url.Values{"year": {strconv.Itoa(year)}}

	var meetings []meeting
	if err := c.get(ctx, "/meetings", params, &meetings); err != nil {
		return nil, fmt.Errorf("schedule %d: %w", year, err)
	}
	var sessions []session
	if err := c.get(ctx, "/sessions", params, &sessions); err != nil {
		return nil, fmt.Errorf("schedule %d: %w", year, err)
	}

	sessionNames := make(map[int][]string)
	for _, s := range sessions {
		sessionNames[s.MeetingKey] = append(sessionNames[s.MeetingKey], s.SessionName)
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return parseTime(meetings[i].DateStart).Before(parseTime(meetings[j].DateStart))
	})

	events := make([]domain.Event, 0, len(meetings))
	round := 0
	for _, m := range meetings {
		format := classifyFormat(m.MeetingName, sessionNames[m.MeetingKey])
		ev := domain.Event{
			Year:   year,
			Name:   m.MeetingName,
			Format: format,
			Date:   parseTime(m.DateStart),
			Key:    m.MeetingKey,
		}
		if m.Year != 0 {
			ev.Year = m.Year
		}
		if format != domain.FormatTesting {
			round++
			ev.RoundNumber = round
		}
		events = append(events, ev)
	}
	return events, nil
}

// classifyFormat derives the weekend format from the meeting name and the
// names of the sessions held during it.
func classifyFormat(meetingName string, sessionNames []string) string {
	if strings.Contains(strings.ToLower(meetingName), "testing") {
		return domain.FormatTesting
	}

	has := func(name string) bool {
		for _, s := range sessionNames {
			if strings.EqualFold(s, name) {
				return true
			}
		}
		return false
	}

	switch {
	case has("Sprint Qualifying"):
		return domain.FormatSprintQualifying
	case has("Sprint Shootout"):
		return domain.FormatSprintShootout
	case has("Sprint"):
		return domain.FormatSprint
	default:
		return domain.FormatConventional
	}
}

// parseTime reads OpenF1 ISO-8601 timestamps; unparseable values yield the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
