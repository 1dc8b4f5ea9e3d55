package predict

// Feature describes one model input column and how the form presents it.
type Feature struct {
	Name    string
	Label   string
	Default float64
	Integer bool
	Min     *float64
	Max     *float64
}

// Feature names that get special handling.
const (
	FeatureGrid      = "grid"
	FeatureYear      = "year"
	FeatureCircuitID = "circuitId"
)

func bound(v float64) *float64 { return &v }

// features is the model's input order. The classifier was trained on these
// columns in exactly this order.
var features = []Feature{
	{Name: FeatureGrid, Label: "Starting position (grid)", Default: 1, Integer: true},
	{Name: "elo_driver_before", Label: "Driver Elo", Default: 2203.081727},
	{Name: "elo_constructor_before", Label: "Constructor Elo", Default: 744.012201},
	{Name: "driver_points_before", Label: "Driver points so far", Default: 25},
	{Name: "driver_wins_before", Label: "Driver wins so far", Default: 1},
	{Name: "constructor_points_before", Label: "Constructor points so far", Default: 43},
	{Name: "constructor_wins_before", Label: "Constructor wins so far", Default: 1},
	{Name: "qual_position", Label: "Qualifying position", Default: 1},
	{Name: "qualifying_gap", Label: "Qualifying gap to pole", Default: 0},
	{Name: "qual_gap_vs_teammate", Label: "Qualifying gap to teammate", Default: -1},
	{Name: "race_gap_vs_teammate", Label: "Race gap to teammate", Default: -1},
	{Name: FeatureYear, Label: "Season", Default: 2023, Integer: true, Min: bound(1950), Max: bound(3000)},
	{Name: FeatureCircuitID, Label: "Circuit", Default: 3, Integer: true},
	{Name: "AirTemp", Label: "Air temperature", Default: 27.431677},
	{Name: "TrackTemp", Label: "Track temperature", Default: 31.011801},
	{Name: "Humidity", Label: "Humidity (%)", Default: 21.496894},
	{Name: "Rainfall", Label: "Rainfall (mm)", Default: 0},
	{Name: "WindSpeed", Label: "Wind speed (km/h)", Default: 0.68323},
}

// Features returns the model inputs in column order.
func Features() []Feature {
	out := make([]Feature, len(features))
	copy(out, features)
	return out
}

// NumFeatures is the width of a model input row.
func NumFeatures() int { return len(features) }
