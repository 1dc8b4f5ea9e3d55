package predict

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths() Paths {
	return Paths{
		Model:    filepath.Join("testdata", "model.json"),
		Labels:   filepath.Join("testdata", "labels.json"),
		Circuits: filepath.Join("testdata", "circuits.csv"),
	}
}

func loadTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := Load(testPaths())
	require.NoError(t, err)
	return p
}

func TestLoad(t *testing.T) {
	p := loadTestPredictor(t)
	assert.Equal(t, []string{
		"Albert Park Grand Prix Circuit (Australia)",
		"Bahrain International Circuit (Bahrain)",
		"Circuit de Monaco (Monaco)",
	}, p.Circuits())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestLoad_MissingArtifact(t *testing.T) {
	paths := testPaths()
	paths.Labels = filepath.Join("testdata", "missing.json")

	_, err := Load(paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestNew_ClassCountMismatch(t *testing.T) {
	forest := &Forest{NClasses: 2, Trees: []Tree{{Nodes: []Node{{Left: -1, Right: -1, Value: []float64{1, 0}}}}}}
	labels := &Labels{Classes: []string{"a", "b", "c"}}

	_, err := New(forest, labels, &Circuits{})
	assert.Error(t, err)
}

func TestPredict(t *testing.T) {
	p := loadTestPredictor(t)
	bahrain := "Bahrain International Circuit (Bahrain)"

	cases := []struct {
		name   string
		values map[string]float64
		want   string
	}{
		{"defaults start from pole", nil, "Podium"},
		{"back of the grid in the dry", map[string]float64{"grid": 12}, "Outside points"},
		{"back of the grid in the rain", map[string]float64{"grid": 12, "Rainfall": 2.5}, "Points"},
		{"threshold is inclusive", map[string]float64{"grid": 3.5}, "Podium"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Predict(Input{Circuit: bahrain, Values: tc.values})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPredict_UnknownCircuit(t *testing.T) {
	p := loadTestPredictor(t)
	_, err := p.Predict(Input{Circuit: "Las Vegas Strip Street Circuit (nan)"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCircuit))
}

func TestRow(t *testing.T) {
	p := loadTestPredictor(t)

	row, err := p.Row(Input{
		Circuit: "Circuit de Monaco (Monaco)",
		Values:  map[string]float64{"grid": 4.9, "circuitId": 99, "AirTemp": 19.5},
	})
	require.NoError(t, err)
	require.Len(t, row, NumFeatures())

	assert.InDelta(t, 4, row[featureIndex(FeatureGrid)], 0, "integer features are truncated")
	assert.InDelta(t, 6, row[featureIndex(FeatureCircuitID)], 0, "circuit label wins over raw id")
	assert.InDelta(t, 19.5, row[featureIndex("AirTemp")], 0)
	assert.InDelta(t, 2023, row[featureIndex(FeatureYear)], 0)
	assert.InDelta(t, 2203.081727, row[featureIndex("elo_driver_before")], 0)
}

func TestRow_YearOutOfRange(t *testing.T) {
	p := loadTestPredictor(t)
	_, err := p.Row(Input{Circuit: "Circuit de Monaco (Monaco)", Values: map[string]float64{"year": 1949}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestFeatures_Order(t *testing.T) {
	var names []string
	for _, f := range Features() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"grid",
		"elo_driver_before", "elo_constructor_before",
		"driver_points_before", "driver_wins_before",
		"constructor_points_before", "constructor_wins_before",
		"qual_position", "qualifying_gap", "qual_gap_vs_teammate",
		"race_gap_vs_teammate",
		"year", "circuitId",
		"AirTemp", "TrackTemp", "Humidity", "Rainfall", "WindSpeed",
	}, names)
}

func TestLoadForest_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":         `{`,
		"no classes":       `{"n_classes":0,"trees":[{"nodes":[{"left":-1,"right":-1,"value":[]}]}]}`,
		"no trees":         `{"n_classes":2,"trees":[]}`,
		"short leaf":       `{"n_classes":2,"trees":[{"nodes":[{"left":-1,"right":-1,"value":[1]}]}]}`,
		"feature range":    `{"n_classes":1,"trees":[{"nodes":[{"feature":40,"threshold":1,"left":1,"right":2},{"left":-1,"right":-1,"value":[1]},{"left":-1,"right":-1,"value":[1]}]}]}`,
		"child loops back": `{"n_classes":1,"trees":[{"nodes":[{"feature":0,"threshold":1,"left":0,"right":1},{"left":-1,"right":-1,"value":[1]}]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadForest(strings.NewReader(body), NumFeatures())
			assert.Error(t, err)
		})
	}
}

func TestForest_PredictProba(t *testing.T) {
	f := &Forest{NClasses: 2, Trees: []Tree{
		{Nodes: []Node{{Left: -1, Right: -1, Value: []float64{3, 1}}}},
		{Nodes: []Node{{Left: -1, Right: -1, Value: []float64{0, 2}}}},
	}}
	proba := f.PredictProba(make([]float64, NumFeatures()))
	assert.InDelta(t, 0.375, proba[0], 1e-9)
	assert.InDelta(t, 0.625, proba[1], 1e-9)
	assert.Equal(t, 1, f.Predict(make([]float64, NumFeatures())))
}

func TestLabels_Decode(t *testing.T) {
	l := &Labels{Classes: []string{"Podium", "Points"}}
	got, err := l.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, "Points", got)

	_, err = l.Decode(2)
	assert.Error(t, err)

	_, err = LoadLabels(strings.NewReader(`{"classes":[]}`))
	assert.Error(t, err)
}

func TestLoadCircuits(t *testing.T) {
	csv := "circuitId,name,country\n" +
		"1,Albert Park,Australia\n" +
		"\\N,Nowhere,Atlantis\n" +
		"7,Albert Park,Australia\n"
	c, err := LoadCircuits(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"Albert Park (Australia)"}, c.Labels())
	id, ok := c.ID("Albert Park (Australia)")
	require.True(t, ok)
	assert.Equal(t, 7, id, "later rows overwrite the id")

	_, err = LoadCircuits(strings.NewReader("circuitRef,name\nx,y\n"))
	assert.Error(t, err, "missing required columns")

	_, err = LoadCircuits(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header row")
}

func featureIndex(name string) int {
	for i, f := range features {
		if f.Name == name {
			return i
		}
	}
	return -1
}
