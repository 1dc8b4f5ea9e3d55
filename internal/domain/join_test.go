package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raceRowFor(code string, pos int) Row {
	return Row{Kind: Race, Year: 2023, Race: testRace, Code: code, FinalPos: iptr(pos)}
}

func qualiRowFor(code string, pos int, lapTime float64) Row {
	return Row{Kind: Qualifying, Year: 2023, Race: testRace, Code: code, QualiPos: iptr(pos), QualiTime: fptr(lapTime)}
}

func TestJoinQualifying(t *testing.T) {
	race := []Row{raceRowFor("VER", 1), raceRowFor("PER", 2), raceRowFor("DEV", 14)}
	quali := []Row{
		qualiRowFor("PER", 2, 90.1),
		qualiRowFor("VER", 1, 89.7),
		qualiRowFor("HUL", 12, 91.0),
	}

	joined := JoinQualifying(race, quali)
	require.Len(t, joined, len(race), "left join keeps every race row")

	assert.Equal(t, "VER", joined[0].Code)
	require.NotNil(t, joined[0].QualiPos)
	assert.Equal(t, 1, *joined[0].QualiPos)
	assert.InDelta(t, 89.7, *joined[0].QualiTime, 1e-9)

	assert.Equal(t, "PER", joined[1].Code)
	assert.Equal(t, 2, *joined[1].QualiPos)

	// No qualifying counterpart: fields stay null.
	assert.Equal(t, "DEV", joined[2].Code)
	assert.Nil(t, joined[2].QualiPos)
	assert.Nil(t, joined[2].QualiTime)

	// Race fields survive the join.
	assert.Equal(t, Race, joined[2].Kind)
	assert.Equal(t, 14, *joined[2].FinalPos)
}

func TestJoinQualifying_KeyIncludesYearAndRace(t *testing.T) {
	race := []Row{raceRowFor("VER", 1)}
	other := qualiRowFor("VER", 3, 88.0)
	other.Race = "Saudi Arabian Grand Prix"
	lastYear := qualiRowFor("VER", 4, 87.0)
	lastYear.Year = 2022

	joined := JoinQualifying(race, []Row{other, lastYear})
	require.Len(t, joined, 1)
	assert.Nil(t, joined[0].QualiPos)
}

func TestJoinQualifying_DuplicateQualifyingKeyDoesNotDuplicateRace(t *testing.T) {
	race := []Row{raceRowFor("VER", 1)}
	quali := []Row{qualiRowFor("VER", 1, 89.7), qualiRowFor("VER", 5, 92.0)}

	joined := JoinQualifying(race, quali)
	require.Len(t, joined, 1)
	assert.Equal(t, 1, *joined[0].QualiPos)
}

func TestJoinQualifying_DoesNotMutateInput(t *testing.T) {
	race := []Row{raceRowFor("VER", 1)}
	_ = JoinQualifying(race, []Row{qualiRowFor("VER", 1, 89.7)})
	assert.Nil(t, race[0].QualiPos)
}
