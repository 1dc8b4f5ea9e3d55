package domain

// WeatherSummary aggregates a session's weather samples. Nil means the
// source provided no data for that column.
type WeatherSummary struct {
	AvgTemp     *float64
	AvgHumidity *float64
	WindSpeed   *float64
	RainFlag    *int
}

// SummarizeWeather averages each weather column over the samples carrying it
// and flags rain when any rain-intensity reading is positive. The rain flag
// stays nil when rain intensity was never measured, so "no rain" (0) and
// "not measured" remain distinguishable.
func SummarizeWeather(samples []WeatherSample) WeatherSummary {
	var temp, humidity, wind []float64
	var rain *int

	for _, s := range samples {
		if s.Temperature != nil {
			temp = append(temp, *s.Temperature)
		}
		if s.Humidity != nil {
			humidity = append(humidity, *s.Humidity)
		}
		if s.WindSpeed != nil {
			wind = append(wind, *s.WindSpeed)
		}
		if s.RainIntensity != nil {
			if rain == nil {
				rain = intPtr(0)
			}
			if *s.RainIntensity > 0 {
				*rain = 1
			}
		}
	}

	return WeatherSummary{
		AvgTemp:     mean(temp),
		AvgHumidity: mean(humidity),
		WindSpeed:   mean(wind),
		RainFlag:    rain,
	}
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

func intPtr(v int) *int { return &v }
