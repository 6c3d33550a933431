package draw

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spanishMonths = map[string]time.Month{
	"enero": time.January, "ene": time.January,
	"febrero": time.February, "feb": time.February,
	"marzo": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "jun": time.June,
	"julio": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"septiembre": time.September, "setiembre": time.September, "sep": time.September, "sept": time.September,
	"octubre": time.October, "oct": time.October,
	"noviembre": time.November, "nov": time.November,
	"diciembre": time.December, "dic": time.December,
}

var spanishWeekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

var (
	// "domingo 19 de octubre", "19 de octubre de 2025", "sabado, 4 de ene."
	longDatePattern = regexp.MustCompile(`(?:\b(lunes|martes|miercoles|jueves|viernes|sabado|domingo)\b,?\s*)?\b(\d{1,2})\s+de\s+([a-z]+)\.?(?:\s+(?:de|del)\s+(\d{4}))?`)
	// 19/10/2025 or 19-10-2025, day first
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	isoDatePattern     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:t|\b)`)
)

// Fold lowercases s and strips diacritics so "Sábado" and "sabado" compare
// equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// ParseDate parses a draw or match date out of dateText.
// Returns time.Time{} (zero value) if no calendar date can be recovered.
// Supports "Domingo 19 de Octubre", "19 de octubre de 2025", "19/10/2025",
// "2025-10-19" and English "Oct 19 2025". Dates without a year are placed in
// the year that matches a named weekday, else the occurrence closest to now.
func ParseDate(dateText string, now time.Time) time.Time {
	if strings.TrimSpace(dateText) == "" {
		return time.Time{}
	}
	folded := Fold(dateText)

	for _, m := range longDatePattern.FindAllStringSubmatch(folded, -1) {
		if t := parseLongDate(m, now); !t.IsZero() {
			return t
		}
	}

	for _, m := range numericDatePattern.FindAllStringSubmatch(folded, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t := calendarDate(year, time.Month(month), day, now.Location()); !t.IsZero() {
			return t
		}
	}

	for _, m := range isoDatePattern.FindAllStringSubmatch(folded, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if t := calendarDate(year, time.Month(month), day, now.Location()); !t.IsZero() {
			return t
		}
	}

	trimmed := strings.TrimSpace(dateText)
	for _, layout := range []string{"Jan 2 2006", "Jan 02 2006", "January 2, 2006", "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.ParseInLocation(layout, trimmed, now.Location()); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
		}
	}

	return time.Time{}
}

func parseLongDate(m []string, now time.Time) time.Time {
	month, ok := spanishMonths[m[3]]
	if !ok {
		return time.Time{}
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}
	}

	if m[4] != "" {
		year, _ := strconv.Atoi(m[4])
		return calendarDate(year, month, day, now.Location())
	}

	var weekday *time.Weekday
	if wd, ok := spanishWeekdays[m[1]]; ok {
		weekday = &wd
	}
	return inferYear(day, month, weekday, now)
}

// weekdayWindow bounds how far from now a named weekday may pull the year.
const weekdayWindow = 183 * 24 * time.Hour

// inferYear picks a year for a day/month pair: the nearest occurrence to
// now, unless another occurrence within weekdayWindow matches the named
// weekday.
func inferYear(day int, month time.Month, weekday *time.Weekday, now time.Time) time.Time {
	var best time.Time
	for _, year := range []int{now.Year(), now.Year() + 1, now.Year() - 1} {
		c := calendarDate(year, month, day, now.Location())
		if c.IsZero() {
			continue
		}
		if best.IsZero() || absDuration(c.Sub(now)) < absDuration(best.Sub(now)) {
			best = c
		}
	}
	if best.IsZero() || weekday == nil || best.Weekday() == *weekday {
		return best
	}

	for _, year := range []int{now.Year(), now.Year() + 1, now.Year() - 1} {
		c := calendarDate(year, month, day, now.Location())
		if !c.IsZero() && c.Weekday() == *weekday && absDuration(c.Sub(now)) <= weekdayWindow {
			return c
		}
	}
	return best
}

// calendarDate returns midnight of the given date, or zero if the date does
// not exist (e.g. 31 de febrero).
func calendarDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if month < time.January || month > time.December || day < 1 || year < 1 {
		return time.Time{}
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != month {
		return time.Time{}
	}
	return t
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// NextSunday returns midnight of the first Sunday strictly after now.
// On a Sunday it returns the following week's Sunday, never today.
func NextSunday(now time.Time) time.Time {
	days := (7 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, now.Location())
}

// IsMonthName reports whether word is a Spanish month name or abbreviation.
func IsMonthName(word string) bool {
	_, ok := spanishMonths[strings.TrimSuffix(Fold(strings.TrimSpace(word)), ".")]
	return ok
}
