package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BlockMinutes is the length of a single scheduling block.
const BlockMinutes = 45

// Block identifies a scheduling block by its start time encoded as HHMM
// (hour*100 + minute).
type Block int

type blockDef struct {
	block  Block
	ignore bool
}

// blockTable is the fixed day layout. Ignored entries are breaks and are
// never assignable.
var blockTable = []blockDef{
	{700, false},
	{745, false},
	{830, true},
	{845, false},
	{930, false},
	{1015, true},
	{1020, false},
	{1105, false},
	{1150, false},
	{1300, false},
	{1345, false},
	{1400, true},
	{1410, false},
	{1455, false},
	{1540, true},
	{1550, false},
	{1635, false},
	{1720, true},
	{1730, false},
	{1815, false},
	{1900, false},
	{1945, false},
}

var ignoredBlocks = func() map[Block]bool {
	out := make(map[Block]bool)
	for _, def := range blockTable {
		if def.ignore {
			out[def.block] = true
		}
	}
	return out
}()

// AllBlocks returns every block of the day, breaks included, in time order.
func AllBlocks() []Block {
	out := make([]Block, len(blockTable))
	for i, def := range blockTable {
		out[i] = def.block
	}
	return out
}

// Ignored reports whether the block is a break slot.
func (b Block) Ignored() bool {
	return ignoredBlocks[b]
}

// Known reports whether the block belongs to the fixed day layout.
func (b Block) Known() bool {
	for _, def := range blockTable {
		if def.block == b {
			return true
		}
	}
	return false
}

// Minutes converts the block into minutes since midnight.
func (b Block) Minutes() int {
	return int(b)/100*60 + int(b)%100
}

// BlockFromMinutes encodes minutes since midnight as HHMM, wrapping at 24h.
func BlockFromMinutes(minutes int) Block {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return Block(minutes/60*100 + minutes%60)
}

// Add advances the block by n blocks of raw minutes. Used for display and
// for positions that fall outside the fixed table.
func (b Block) Add(n int) Block {
	return BlockFromMinutes(b.Minutes() + n*BlockMinutes)
}

// Clock renders the block as "HH:MM".
func (b Block) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(b)/100, int(b)%100)
}

// ClockSeconds renders the block as "HH:MM:SS", the wire format used by
// the persistence layer.
func (b Block) ClockSeconds() string {
	return b.Clock() + ":00"
}

func (b Block) String() string {
	return b.Clock()
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into a block encoding. The result
// is not required to be part of the fixed table.
func ParseClock(raw string) (Block, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, false
		}
	}
	return Block(hour*100 + minute), true
}

// MinutesOf parses a wire time into minutes since midnight.
func MinutesOf(raw string) (int, bool) {
	b, ok := ParseClock(raw)
	if !ok {
		return 0, false
	}
	return b.Minutes(), true
}

// BlocksBetween returns the fixed blocks within [start, end] inclusive in
// ascending order. Breaks are included only when withBreaks is set.
func BlocksBetween(start, end Block, withBreaks bool) []Block {
	out := make([]Block, 0, len(blockTable))
	for _, def := range blockTable {
		if def.block < start || def.block > end {
			continue
		}
		if def.ignore && !withBreaks {
			continue
		}
		out = append(out, def.block)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
