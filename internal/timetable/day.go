package timetable

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DaysPerWeek is the number of teaching days in the grid.
const DaysPerWeek = 6

var dayNames = [DaysPerWeek]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

var dayIndexByKey = func() map[string]int {
	out := make(map[string]int, DaysPerWeek)
	for i, name := range dayNames {
		out[foldDayName(name)] = i
	}
	return out
}()

// DayName maps a day index (0 = Lunes) to its canonical name. Unknown
// indexes yield an empty string.
func DayName(index int) string {
	if index < 0 || index >= DaysPerWeek {
		return ""
	}
	return dayNames[index]
}

// DayIndex resolves a day name regardless of case and accents.
func DayIndex(name string) (int, bool) {
	idx, ok := dayIndexByKey[foldDayName(name)]
	return idx, ok
}

// DayNames returns the canonical day names in grid order.
func DayNames() []string {
	out := make([]string, DaysPerWeek)
	copy(out, dayNames[:])
	return out
}

func foldDayName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToLower(folded)
}
