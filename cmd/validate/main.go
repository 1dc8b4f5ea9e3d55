// Command validate checks a corpus CSV produced by cmd/dataset for schema
// and data integrity: header layout, row identity, race outcome flags, and
// per-row counts. It prints a per-phase pass/fail summary and exits non-zero
// when any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -input data/f1_dataset.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "data/f1_dataset.csv", "path to the corpus CSV")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *input))
}

func run(w io.Writer, path string) int {
	fmt.Fprintln(w, "=== F1 Corpus Validation ===")
	fmt.Fprintln(w)

	header, records, err := csvfile.Read(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load corpus: %v\n", err)
		return 1
	}

	phases := validate(header, records)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Phase", "Result"})
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		t.AppendRow(table.Row{p.name, status})
	}
	t.Render()

	fmt.Fprintf(w, "\nRecords: %d rows, %d events\n", len(records), countEvents(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func validate(header []string, records []csvfile.Record) []*phase {
	return []*phase{
		validateSchema(header),
		validateIdentity(records),
		validateOutcomes(records),
		validateCounts(records),
	}
}

// ── Phase 1: Schema ──

func validateSchema(header []string) *phase {
	p := &phase{name: "Phase 1: Schema (header layout)"}
	want := domain.SeasonColumns()
	if slices.Equal(header, want) {
		return p
	}
	for _, col := range want {
		if !slices.Contains(header, col) {
			p.errorf("missing column %q", col)
		}
	}
	for _, col := range header {
		if !slices.Contains(want, col) {
			p.errorf("unexpected column %q", col)
		}
	}
	if p.passed() {
		p.errorf("columns out of order: got %s", strings.Join(header, ","))
	}
	return p
}

// ── Phase 2: Identity ──
// Every row names a season, event and driver, and no driver appears twice in an event.

func validateIdentity(records []csvfile.Record) *phase {
	p := &phase{name: "Phase 2: Identity (year, race, code)"}
	seen := make(map[string]int, len(records))
	for _, r := range records {
		year, race, code := r.Fields[domain.ColYear], r.Fields[domain.ColRace], r.Fields[domain.ColCode]
		if _, err := strconv.Atoi(year); err != nil {
			p.errorf("line %d: Year %q is not an integer", r.Line, year)
		}
		if race == "" {
			p.errorf("line %d: Race is empty", r.Line)
		}
		if code == "" {
			p.errorf("line %d: Code is empty", r.Line)
		}
		key := year + "|" + race + "|" + code
		if first, dup := seen[key]; dup {
			p.errorf("line %d: duplicate of line %d (%s)", r.Line, first, key)
			continue
		}
		seen[key] = r.Line
	}
	return p
}

// ── Phase 3: Outcomes ──
// One winner per event, at most three podium rows, and flags consistent with FinalPos.

func validateOutcomes(records []csvfile.Record) *phase {
	p := &phase{name: "Phase 3: Outcomes (winner, top3)"}

	type tally struct{ winners, top3 int }
	events := make(map[string]*tally)
	var order []string

	for _, r := range records {
		event := r.Fields[domain.ColYear] + " " + r.Fields[domain.ColRace]
		t, ok := events[event]
		if !ok {
			t = &tally{}
			events[event] = t
			order = append(order, event)
		}

		winner, okW := flag01(r.Fields[domain.ColWinner])
		top3, okT := flag01(r.Fields[domain.ColTop3])
		if !okW || !okT {
			p.errorf("line %d: Winner/Top3 must be 0 or 1, got %q/%q", r.Line, r.Fields[domain.ColWinner], r.Fields[domain.ColTop3])
			continue
		}
		t.winners += winner
		t.top3 += top3

		if winner == 1 && top3 == 0 {
			p.errorf("line %d: winner without top3", r.Line)
		}

		pos, hasPos := optionalInt(r.Fields[domain.ColFinalPos])
		wantWinner, wantTop3 := 0, 0
		if hasPos && pos == 1 {
			wantWinner = 1
		}
		if hasPos && pos <= 3 {
			wantTop3 = 1
		}
		if winner != wantWinner || top3 != wantTop3 {
			p.errorf("line %d: flags Winner=%d Top3=%d disagree with FinalPos %q", r.Line, winner, top3, r.Fields[domain.ColFinalPos])
		}
	}

	for _, event := range order {
		t := events[event]
		if t.winners > 1 {
			p.errorf("%s: %d winners", event, t.winners)
		}
		if t.top3 > 3 {
			p.errorf("%s: %d top3 rows", event, t.top3)
		}
	}
	return p
}

// ── Phase 4: Counts ──
// Pit stops and tyre stints are non-negative, and the stint count matches the compound list.

func validateCounts(records []csvfile.Record) *phase {
	p := &phase{name: "Phase 4: Counts (pit stops, tyres, rain)"}
	for _, r := range records {
		pits, err := strconv.Atoi(r.Fields[domain.ColPitStops])
		if err != nil || pits < 0 {
			p.errorf("line %d: PitStops %q is not a non-negative integer", r.Line, r.Fields[domain.ColPitStops])
		}
		stints, err := strconv.Atoi(r.Fields[domain.ColTyreStints])
		if err != nil || stints < 0 {
			p.errorf("line %d: TyreStints %q is not a non-negative integer", r.Line, r.Fields[domain.ColTyreStints])
		} else if compounds := r.Fields[domain.ColTyreCompounds]; compounds != "" {
			if n := len(strings.Split(compounds, ",")); n != stints {
				p.errorf("line %d: TyreStints %d but %d compounds listed", r.Line, stints, n)
			}
		}
		switch r.Fields[domain.ColRainFlag] {
		case "", "0", "1":
		default:
			p.errorf("line %d: RainFlag %q must be empty, 0 or 1", r.Line, r.Fields[domain.ColRainFlag])
		}
	}
	return p
}

// ── Helpers ──

func flag01(s string) (int, bool) {
	switch s {
	case "0":
		return 0, true
	case "1":
		return 1, true
	default:
		return 0, false
	}
}

func optionalInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func countEvents(records []csvfile.Record) int {
	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.Fields[domain.ColYear]+"|"+r.Fields[domain.ColRace]] = true
	}
	return len(seen)
}
