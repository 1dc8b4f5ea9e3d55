// Package predict serves a pre-trained race-outcome classifier. The model,
// its label decoder and the circuit lookup are loaded once at startup; a
// Predictor is immutable afterwards and safe for concurrent use.
package predict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	// ErrUnknownCircuit is returned when the circuit label is not in the lookup.
	ErrUnknownCircuit = errors.New("unknown circuit")

	// ErrInvalidInput is returned when a feature value is outside its allowed range.
	ErrInvalidInput = errors.New("invalid input")
)

// Paths locates the predictor artifacts on disk.
type Paths struct {
	Model    string
	Labels   string
	Circuits string
}

// Input is one prediction request. Values are keyed by feature name; missing
// features take their default. The circuit is chosen by display label and
// overrides any circuitId value.
type Input struct {
	Circuit string
	Values  map[string]float64
}

// Predictor evaluates the classifier on form input.
type Predictor struct {
	forest   *Forest
	labels   *Labels
	circuits *Circuits
}

// Load reads all three artifacts. Any failure is fatal to the caller.
func Load(paths Paths) (*Predictor, error) {
	forest, err := loadFile(paths.Model, func(r io.Reader) (*Forest, error) {
		return LoadForest(r, NumFeatures())
	})
	if err != nil {
		return nil, err
	}
	labels, err := loadFile(paths.Labels, LoadLabels)
	if err != nil {
		return nil, err
	}
	circuits, err := loadFile(paths.Circuits, LoadCircuits)
	if err != nil {
		return nil, err
	}
	return New(forest, labels, circuits)
}

// New assembles a Predictor from decoded artifacts.
func New(forest *Forest, labels *Labels, circuits *Circuits) (*Predictor, error) {
	if forest.NClasses != len(labels.Classes) {
		return nil, fmt.Errorf("model has %d classes but label encoder has %d", forest.NClasses, len(labels.Classes))
	}
	return &Predictor{forest: forest, labels: labels, circuits: circuits}, nil
}

func loadFile[T any](path string, decode func(io.Reader) (*T, error)) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return v, nil
}

// Circuits returns the selectable circuit labels.
func (p *Predictor) Circuits() []string {
	return p.circuits.Labels()
}

// Predict assembles the feature row and returns the decoded class label.
func (p *Predictor) Predict(in Input) (string, error) {
	row, err := p.Row(in)
	if err != nil {
		return "", err
	}
	return p.labels.Decode(p.forest.Predict(row))
}

// Row builds the model input in feature order.
func (p *Predictor) Row(in Input) ([]float64, error) {
	id, ok := p.circuits.ID(in.Circuit)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCircuit, in.Circuit)
	}

	row := make([]float64, NumFeatures())
	for i, f := range features {
		v, ok := in.Values[f.Name]
		if !ok {
			v = f.Default
		}
		if f.Name == FeatureCircuitID {
			v = float64(id)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.Name)
		}
		if f.Integer {
			v = math.Trunc(v)
		}
		if f.Min != nil && v < *f.Min {
			return nil, fmt.Errorf("%w: %s must be at least %g", ErrInvalidInput, f.Name, *f.Min)
		}
		if f.Max != nil && v > *f.Max {
			return nil, fmt.Errorf("%w: %s must be at most %g", ErrInvalidInput, f.Name, *f.Max)
		}
		row[i] = v
	}
	return row, nil
}

// CheckReadiness always succeeds: a Predictor only exists once its
// artifacts have loaded.
func (p *Predictor) CheckReadiness(_ context.Context) error {
	return nil
}
