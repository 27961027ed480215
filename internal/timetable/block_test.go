package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw  string
		want Block
		ok   bool
	}{
		{"07:00", 700, true},
		{"19:45:00", 1945, true},
		{" 08:45 ", 845, true},
		{"25:00", 0, false},
		{"08:61", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
		{"0800", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestBlockArithmetic(t *testing.T) {
	assert.Equal(t, Block(2030), Block(1945).Add(1))
	assert.Equal(t, Block(15), Block(2330).Add(1))
	assert.Equal(t, "00:15", Block(2330).Add(1).Clock())
	assert.Equal(t, "08:45:00", Block(845).ClockSeconds())
	assert.Equal(t, 525, Block(845).Minutes())
	assert.True(t, Block(830).Ignored())
	assert.False(t, Block(845).Ignored())
	assert.True(t, Block(1945).Known())
	assert.False(t, Block(800).Known())
}

func TestBlocksBetween(t *testing.T) {
	assert.Equal(t, []Block{700, 745, 845, 930, 1020, 1105, 1150}, BlocksBetween(700, 1150, false))
	assert.Len(t, BlocksBetween(700, 1150, true), 9)
	assert.Len(t, AllBlocks(), 22)
	assert.Empty(t, BlocksBetween(2000, 2100, true))
}

func TestDayIndex(t *testing.T) {
	idx, ok := DayIndex("miercoles")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = DayIndex("SÁBADO")
	require.True(t, ok)
	assert.Equal(t, 5, idx)

	_, ok = DayIndex("Domingo")
	assert.False(t, ok)

	assert.Equal(t, "Lunes", DayName(0))
	assert.Equal(t, "", DayName(6))
}
