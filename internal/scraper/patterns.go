package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
)

// matcher tries to recover one field from text.
type matcher func(text string) (string, bool)

// firstMatch returns the value of the first matcher that succeeds.
func firstMatch(text string, matchers ...matcher) (string, bool) {
	for _, m := range matchers {
		if v, ok := m(text); ok {
			return v, true
		}
	}
	return "", false
}

const amountExpr = `\$\s?\d{1,3}(?:[,.]\d{3})+(?:\.\d{2})?(?:\s+millones?)?|\$\s?\d+(?:\.\d+)?(?:\s+millones?)?`

var (
	labeledAmountPattern  = regexp.MustCompile(`(?i)(?:premio|bolsa)[^$]{0,60}?(` + amountExpr + `)`)
	currencyAmountPattern = regexp.MustCompile(amountExpr)
	millionsPattern       = regexp.MustCompile(`(?i)\b\d{1,3}(?:[.,]\d+)?\s+millones?(?:\s+de\s+pesos)?`)
	dollarSpacePattern    = regexp.MustCompile(`\$\s+`)
)

var prizeMatchers = []matcher{
	submatcher(labeledAmountPattern, 1),
	submatcher(currencyAmountPattern, 0),
	submatcher(millionsPattern, 0),
}

// findPrize returns the first prize amount in text, whitespace normalised.
func findPrize(text string) (string, bool) {
	v, ok := firstMatch(text, prizeMatchers...)
	if !ok {
		return "", false
	}
	return dollarSpacePattern.ReplaceAllString(normalizeSpace(v), "$$"), true
}

func submatcher(re *regexp.Regexp, group int) matcher {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || m[group] == "" {
			return "", false
		}
		return m[group], true
	}
}

// Round labels in priority order. The optional trailing group catches date
// phrases such as "sorteo 19 de octubre", which are not rounds.
var roundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bjornada\s*(?:n[oº°]\.?|n[uú]m(?:ero)?\.?|#)?\s*:?\s*([a-z]?\d+[a-z0-9-]*)(\s+de\s+\p{L}+)?`),
	regexp.MustCompile(`(?i)\bconcurso\s*(?:n[oº°]\.?|n[uú]m(?:ero)?\.?|#)?\s*:?\s*([a-z]?\d+[a-z0-9-]*)(\s+de\s+\p{L}+)?`),
	regexp.MustCompile(`(?i)\bn[uú]mero\s+de\s+(?:sorteo|concurso)\s*:?\s*([a-z]?\d+[a-z0-9-]*)()`),
	regexp.MustCompile(`(?i)\bsorteo\s*(?:n[oº°]\.?|n[uú]m(?:ero)?\.?|#)?\s*:?\s*([a-z]?\d+[a-z0-9-]*)(\s+de\s+\p{L}+)?`),
}

func roundMatcher(re *regexp.Regexp) matcher {
	return func(text string) (string, bool) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if m[2] != "" && draw.IsMonthName(strings.Fields(m[2])[1]) {
				continue
			}
			return m[1], true
		}
		return "", false
	}
}

// findRound returns the first round identifier in text.
func findRound(text string) (string, bool) {
	matchers := make([]matcher, len(roundPatterns))
	for i, re := range roundPatterns {
		matchers[i] = roundMatcher(re)
	}
	return firstMatch(text, matchers...)
}

// Date candidates run against folded text (lowercase, no accents). A label
// next to the date makes it the preferred candidate.
var dateCandidatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:sorteo|fecha)[^\n]{0,40}?((?:(?:lunes|martes|miercoles|jueves|viernes|sabado|domingo),?\s+)?\d{1,2}\s+de\s+[a-z]+\.?(?:\s+(?:de|del)\s+\d{4})?)`),
	regexp.MustCompile(`((?:(?:lunes|martes|miercoles|jueves|viernes|sabado|domingo),?\s+)?\d{1,2}\s+de\s+[a-z]+\.?(?:\s+(?:de|del)\s+\d{4})?)`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`),
	regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})(?:t|\b)`),
}

// findDate returns the first candidate that parses into a calendar date.
// Unparseable candidates are discarded and the search continues.
func findDate(text string, now time.Time) time.Time {
	folded := draw.Fold(text)
	for _, re := range dateCandidatePatterns {
		for _, m := range re.FindAllStringSubmatch(folded, -1) {
			if t := draw.ParseDate(m[1], now); !t.IsZero() {
				return t
			}
		}
	}
	return time.Time{}
}

var versusLinePattern = regexp.MustCompile(`(?i)^(?:\d{1,2}[.)-]?\s+)?(\p{L}[\p{L}.'& ]{1,29}?)\s+(?:vs\.?|v/s|contra)\s+(\p{L}[\p{L}.'& ]{1,29}?)\s*(?:\s\d.*)?$`)

// parseVersusLine splits "América vs Chivas" into its two teams.
func parseVersusLine(line string) (home, away string, ok bool) {
	m := versusLinePattern.FindStringSubmatch(normalizeSpace(line))
	if m == nil {
		return "", "", false
	}
	home, away = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	if len([]rune(home)) < 3 || len([]rune(away)) < 3 || strings.EqualFold(home, away) {
		return "", "", false
	}
	return home, away, true
}

// MatchPatterns recovers draw-info fields and match lines from plain text.
// Each field is matched independently, so partial success is normal.
func MatchPatterns(text string, now time.Time) PartialResult {
	var result PartialResult

	var matches []draw.MatchRecord
	for _, line := range strings.Split(text, "\n") {
		if home, away, ok := parseVersusLine(line); ok {
			matches = append(matches, draw.MatchRecord{HomeTeam: home, AwayTeam: away})
			if len(matches) == draw.MaxMatches {
				break
			}
		}
	}
	if len(matches) > 0 {
		result.Matches = draw.Renumber(matches)
	}

	if prize, ok := findPrize(text); ok {
		result.Prize = draw.String(prize)
	}
	if round, ok := findRound(text); ok {
		result.Round = draw.String(round)
	}
	result.Date = findDate(text, now)

	return result
}
