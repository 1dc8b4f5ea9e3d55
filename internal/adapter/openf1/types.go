package openf1

import "encoding/json"

// OpenF1 API response types. Nullable numeric fields are pointers.

type meeting struct {
	MeetingKey  int    `json:"meeting_key"`
	MeetingName string `json:"meeting_name"`
	CountryName string `json:"country_name"`
	DateStart   string `json:"date_start"`
	Year        int    `json:"year"`
}

type session struct {
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	MeetingKey  int    `json:"meeting_key"`
	DateStart   string `json:"date_start"`
}

type driver struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

type sessionResult struct {
	DriverNumber int             `json:"driver_number"`
	Position     *int            `json:"position"`
	Points       *float64        `json:"points"`
	DNF          bool            `json:"dnf"`
	DNS          bool            `json:"dns"`
	DSQ          bool            `json:"dsq"`
	NumberOfLaps *int            `json:"number_of_laps"`
	GapToLeader  json.RawMessage `json:"gap_to_leader"` // number, "+N LAP(S)" or an array in qualifying
}

type gridEntry struct {
	DriverNumber int  `json:"driver_number"`
	Position     *int `json:"position"`
}

type lap struct {
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	LapDuration  *float64 `json:"lap_duration"`
	IsPitOutLap  bool     `json:"is_pit_out_lap"`
	DateStart    *string  `json:"date_start"`
}

type stint struct {
	DriverNumber int     `json:"driver_number"`
	StintNumber  int     `json:"stint_number"`
	LapStart     *int    `json:"lap_start"`
	LapEnd       *int    `json:"lap_end"`
	Compound     *string `json:"compound"`
}

type weather struct {
	AirTemperature   *float64 `json:"air_temperature"`
	TrackTemperature *float64 `json:"track_temperature"`
	Humidity         *float64 `json:"humidity"`
	Rainfall         *float64 `json:"rainfall"`
	WindSpeed        *float64 `json:"wind_speed"`
	Date             string   `json:"date"`
}
