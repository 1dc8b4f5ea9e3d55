package predict

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvNull is how the circuits file marks missing values.
const csvNull = `\N`

// Circuits maps display labels of the form "name (country)" to circuit ids.
type Circuits struct {
	labels []string
	ids    map[string]int
}

// LoadCircuits reads a circuits CSV with at least circuitId, name and
// country columns. Rows with a missing id, name or country are skipped. A
// repeated label keeps its first position and the last id.
func LoadCircuits(r io.Reader) (*Circuits, error) {
	all, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read circuits: %w", err)
	}
	if len(all) == 0 {
		return nil, errors.New("read circuits: missing header row")
	}

	col := make(map[string]int, len(all[0]))
	for i, h := range all[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{"circuitId", "name", "country"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("read circuits: missing column %q", name)
		}
	}

	c := &Circuits{ids: make(map[string]int)}
	for _, rec := range all[1:] {
		id, name, country := field(rec, col["circuitId"]), field(rec, col["name"]), field(rec, col["country"])
		if id == "" || name == "" || country == "" {
			continue
		}
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("read circuits: circuitId %q: %w", id, err)
		}
		label := name + " (" + country + ")"
		if _, seen := c.ids[label]; !seen {
			c.labels = append(c.labels, label)
		}
		c.ids[label] = n
	}
	if len(c.labels) == 0 {
		return nil, errors.New("read circuits: no usable rows")
	}
	return c, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if v == csvNull {
		return ""
	}
	return v
}

// Labels returns the circuit choices in file order.
func (c *Circuits) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// ID resolves a circuit label.
func (c *Circuits) ID(label string) (int, bool) {
	id, ok := c.ids[label]
	return id, ok
}
