package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/f1-dataset-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func raceRow(code string, pos int) domain.Row {
	r := domain.Row{
		Kind: domain.Race, Year: 2023, RoundNumber: 1, Race: "Bahrain Grand Prix",
		Driver: "Driver " + code, Code: code, Team: "Team",
		FinalPos: ptr(pos), Status: "Finished",
		PitStops: 1, TyreStints: 2, TyreCompounds: ptr("SOFT,HARD"),
	}
	if pos == 1 {
		r.Winner = 1
	}
	if pos <= 3 {
		r.Top3 = 1
	}
	return r
}

func writeCorpus(t *testing.T, rows ...domain.Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.csv")
	w := csvfile.NewWriter(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, w.Load(context.Background(), domain.Table{Columns: domain.SeasonColumns(), Rows: rows}))
	return path
}

func TestRun_ValidCorpus(t *testing.T) {
	path := writeCorpus(t, raceRow("VER", 1), raceRow("PER", 2), raceRow("ALO", 3), raceRow("SAI", 4))

	var out bytes.Buffer
	code := run(&out, path)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Records: 4 rows, 1 events")
}

func TestRun_DetectsTwoWinners(t *testing.T) {
	second := raceRow("PER", 2)
	second.Winner = 1
	path := writeCorpus(t, raceRow("VER", 1), second)

	var out bytes.Buffer
	code := run(&out, path)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "2023 Bahrain Grand Prix: 2 winners")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestValidateOutcomes_NullPositionIsNotPodium(t *testing.T) {
	dnf := raceRow("LEC", 0)
	dnf.FinalPos = nil
	dnf.Winner, dnf.Top3 = 0, 0

	_, records, err := csvfile.Read(writeCorpus(t, raceRow("VER", 1), dnf))
	require.NoError(t, err)
	assert.True(t, validateOutcomes(records).passed())
}

func TestValidateSchema(t *testing.T) {
	assert.True(t, validateSchema(domain.SeasonColumns()).passed())

	missing := validateSchema(domain.RaceColumns())
	require.False(t, missing.passed())
	assert.Contains(t, strings.Join(missing.errors, "\n"), `missing column "QualiPos"`)

	swapped := domain.SeasonColumns()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.False(t, validateSchema(swapped).passed())
}

func TestValidateIdentity_Duplicate(t *testing.T) {
	_, records, err := csvfile.Read(writeCorpus(t, raceRow("VER", 1), raceRow("VER", 2)))
	require.NoError(t, err)

	p := validateIdentity(records)
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "duplicate of line 2")
}

func TestValidateCounts_StintMismatch(t *testing.T) {
	row := raceRow("VER", 1)
	row.TyreStints = 3

	_, records, err := csvfile.Read(writeCorpus(t, row))
	require.NoError(t, err)

	p := validateCounts(records)
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "TyreStints 3 but 2 compounds listed")
}
