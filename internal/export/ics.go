package export

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const icsLineLimit = 75

// GenerateICS generates an iCalendar (.ics) entry for the sheet's draw. The
// draw is an all-day event; the description lists the picks.
func GenerateICS(sheet Sheet) string {
	var ics strings.Builder

	line := func(s string) {
		ics.WriteString(foldICS(s))
		ics.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//Progol Aleatorio//progol//ES")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("BEGIN:VEVENT")

	line(fmt.Sprintf("UID:progol-%s-%d@progol-aleatorio", sheet.Draw.DrawDate.Format("20060102"), sheet.Number))
	line(fmt.Sprintf("DTSTAMP:%s", formatICSTime(sheet)))

	day := sheet.Draw.DrawDate
	line(fmt.Sprintf("DTSTART;VALUE=DATE:%s", day.Format("20060102")))
	line(fmt.Sprintf("DTEND;VALUE=DATE:%s", day.AddDate(0, 0, 1).Format("20060102")))

	summary := "Sorteo Progol"
	if sheet.Draw.RoundNumber != nil {
		summary = fmt.Sprintf("Sorteo Progol - Concurso %s", *sheet.Draw.RoundNumber)
	}
	line("SUMMARY:" + escapeICS(summary))

	var desc strings.Builder
	title, header := Header(sheet)
	fmt.Fprintf(&desc, "%s\n%s\n\n", title, header)
	for _, m := range sheet.Matches {
		fmt.Fprintf(&desc, "%d. %s vs %s: %s\n", m.Position, m.HomeTeam, m.AwayTeam, sheet.pickCode(m.Position))
	}
	fmt.Fprintf(&desc, "\n%s", StatsLine(sheet.Stats()))
	line("DESCRIPTION:" + escapeICS(desc.String()))

	line("STATUS:CONFIRMED")
	line("SEQUENCE:0")
	line("TRANSP:TRANSPARENT")

	line("END:VEVENT")
	line("END:VCALENDAR")

	return ics.String()
}

// formatICSTime formats the sheet's generation time as an iCalendar datetime
func formatICSTime(sheet Sheet) string {
	return sheet.GeneratedAt.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// foldICS splits a content line into 75-octet chunks joined by CRLF and a
// space, never cutting a UTF-8 sequence.
func foldICS(s string) string {
	if len(s) <= icsLineLimit {
		return s
	}

	var b strings.Builder
	limit := icsLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		// Continuation lines lose one octet to the leading space.
		limit = icsLineLimit - 1
	}
	b.WriteString(s)
	return b.String()
}
