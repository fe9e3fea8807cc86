package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, day("2026-03-10"), got)

	got, err = ParseDate("2026-03-10T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.March, got.Month())

	_, err = ParseDate("")
	assert.Error(t, err)

	_, err = ParseDate("10/03/2026")
	assert.Error(t, err)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 2, Nights(day("2026-03-10"), day("2026-03-12")))
	assert.Equal(t, 1, Nights(day("2026-03-10"), day("2026-03-11")))

	// Empty and inverted ranges price as zero nights.
	assert.Equal(t, 0, Nights(day("2026-03-10"), day("2026-03-10")))
	assert.Equal(t, 0, Nights(day("2026-03-12"), day("2026-03-10")))

	// Partial days round up.
	late := day("2026-03-10").Add(18 * time.Hour)
	assert.Equal(t, 2, Nights(late, day("2026-03-12")))
}

func TestRangesOverlap(t *testing.T) {
	a1, a2 := day("2026-03-10"), day("2026-03-12")

	assert.True(t, RangesOverlap(a1, a2, day("2026-03-11"), day("2026-03-13")))
	assert.True(t, RangesOverlap(a1, a2, day("2026-03-09"), day("2026-03-11")))
	assert.True(t, RangesOverlap(a1, a2, day("2026-03-09"), day("2026-03-13")))
	assert.True(t, RangesOverlap(a1, a2, a1, a2))

	// Half-open semantics: checkout day equals another stay's checkin day.
	assert.False(t, RangesOverlap(a1, a2, day("2026-03-12"), day("2026-03-14")))
	assert.False(t, RangesOverlap(a1, a2, day("2026-03-08"), day("2026-03-10")))

	assert.False(t, RangesOverlap(a1, a2, day("2026-03-14"), day("2026-03-16")))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 10.57, RoundMoney(10.566))
	assert.Equal(t, 10.56, RoundMoney(10.564))
	assert.Equal(t, 10.0, RoundMoney(10.0))
	assert.Equal(t, 0.1, RoundMoney(0.1+0.2-0.2))
}
