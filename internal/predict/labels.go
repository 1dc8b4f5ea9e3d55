package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Labels decodes class codes back to their original names.
type Labels struct {
	Classes []string `json:"classes"`
}

// LoadLabels decodes a label encoder export.
func LoadLabels(r io.Reader) (*Labels, error) {
	var l Labels
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if len(l.Classes) == 0 {
		return nil, errors.New("invalid labels: no classes")
	}
	return &l, nil
}

// Decode returns the class name for code.
func (l *Labels) Decode(code int) (string, error) {
	if code < 0 || code >= len(l.Classes) {
		return "", fmt.Errorf("class code %d out of range [0,%d)", code, len(l.Classes))
	}
	return l.Classes[code], nil
}
