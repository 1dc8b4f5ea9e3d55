// Package domain models Formula 1 timing data and the flattening rules that
// turn one session into dataset rows.
//
// # Data Source
//
// Sessions come from a timing-data provider (see [Source]); the production
// implementation talks to the OpenF1 REST API. A loaded [Session] exposes
// three tables: the classification ([Result]), every timed lap ([Lap]) and
// the weather channel ([WeatherSample]).
//
// # Row Shapes
//
// Qualifying and race sessions produce rows with different columns:
//
//	common:     Year, RoundNumber, Race, Driver, Code, Team,
//	            AvgTemp, RainFlag, AvgHumidity, WindSpeed
//	race:       Grid, FinalPos, Status, Points, AvgLapTime, BestLap,
//	            PitStops, TyreStints, TyreCompounds, Winner, Top3
//	qualifying: QualiPos, QualiTime
//
// A season row is a race row left-joined with QualiPos and QualiTime on
// (Year, Race, Code). See [JoinQualifying].
//
// # Null Policy
//
// Lap times are in seconds. Aggregates over an empty lap set follow two
// rules:
//
//	counts (PitStops, TyreStints)           -> 0
//	times  (AvgLapTime, BestLap, QualiTime) -> null
//
// Weather means are null when the column is absent. RainFlag is 1 when any
// rain-intensity sample is positive, 0 when all are zero, and null when the
// channel carries no rain measurement at all.
//
// Winner and Top3 derive only from the final position; a null position
// yields 0 for both.
package domain
