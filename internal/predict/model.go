package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Forest is a tree-ensemble classifier exported as JSON. Each tree follows
// the scikit-learn layout: a flat node array where node 0 is the root,
// samples go left when x[feature] <= threshold, and leaves have left == -1.
type Forest struct {
	NClasses int    `json:"n_classes"`
	Trees    []Tree `json:"trees"`
}

// Tree is one estimator of the ensemble.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split or, when Left is -1, a leaf carrying per-class weights.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

const leaf = -1

// LoadForest decodes and validates a model export for inputs of width nFeatures.
func LoadForest(r io.Reader, nFeatures int) (*Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := f.validate(nFeatures); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &f, nil
}

func (f *Forest) validate(nFeatures int) error {
	if f.NClasses <= 0 {
		return errors.New("n_classes must be positive")
	}
	if len(f.Trees) == 0 {
		return errors.New("no trees")
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d: no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left == leaf {
				if len(n.Value) != f.NClasses {
					return fmt.Errorf("tree %d node %d: leaf has %d values, want %d", ti, ni, len(n.Value), f.NClasses)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= nFeatures {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			// Children always come after their parent, which also rules out cycles.
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// Predict returns the class code with the highest averaged probability.
// Ties go to the lowest code.
func (f *Forest) Predict(x []float64) int {
	proba := f.PredictProba(x)
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return best
}

// PredictProba averages the normalized leaf distributions of every tree.
func (f *Forest) PredictProba(x []float64) []float64 {
	proba := make([]float64, f.NClasses)
	for _, t := range f.Trees {
		value := t.leafFor(x).Value
		var total float64
		for _, v := range value {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range value {
			proba[c] += v / total
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba
}

func (t Tree) leafFor(x []float64) Node {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == leaf {
			return n
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
