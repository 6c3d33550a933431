package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"golang.org/x/net/html"
)

const (
	homeSelector = ".local, .home, .equipo-local, .home-team, [data-role=home]"
	awaySelector = ".visitante, .away, .equipo-visitante, .away-team, [data-role=away]"
	timeSelector = "time[datetime], .fecha, .date, .horario"
)

// Draw metadata selectors, most specific first.
var (
	prizeSelectors = []string{"[class*=premio]", "[class*=bolsa]", "[id*=premio]", "[id*=bolsa]", "[class*=prize]", "[class*=jackpot]"}
	dateSelectors  = []string{"[class*=fecha-sorteo]", "[id*=fecha]", "[class*=sorteo] time[datetime]", "[class*=fecha]", "[class*=draw-date]", "time[datetime]"}
	roundSelectors = []string{"[class*=jornada]", "[id*=jornada]", "[class*=concurso]", "[id*=concurso]", "[class*=sorteo]", "[id*=sorteo]"}
)

var (
	matchClassPattern   = regexp.MustCompile(`(?i)partido|match|game`)
	teamNamePattern     = regexp.MustCompile(`^\p{L}[\p{L}\p{N} .'&-]{1,39}$`)
	infoLabelPattern    = regexp.MustCompile(`(?i)premio|bolsa|fecha|sorteo|jornada|concurso|total|lugar|aciertos|ganadores|categor`)
	positionCellPattern = regexp.MustCompile(`^\d{1,2}\.?$`)
	bareRoundPattern    = regexp.MustCompile(`^#?\s*([A-Za-z]?\d+[A-Za-z0-9-]*)$`)
	headerCellPattern   = regexp.MustCompile(`(?i)^(?:local|visitante|visita|partido|equipo|empate|resultado)e?s?$`)
)

// ExtractStructured reads match rows and draw metadata from the page markup.
// A *ParseError is returned when nothing usable was found; the partial
// result is still valid in that case.
func ExtractStructured(raw string, now time.Time) (PartialResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return PartialResult{}, &ParseError{Reason: "parsing HTML", Err: err}
	}

	var result PartialResult

	// Try multiple row strategies; the first one that yields rows wins.
	strategies := []func(*goquery.Document, time.Time) []draw.MatchRecord{
		matchBlocks,
		tableRows,
		versusTextNodes,
	}
	for _, strategy := range strategies {
		if matches := strategy(doc, now); len(matches) > 0 {
			result.Matches = draw.Renumber(matches)
			break
		}
	}

	if prize, ok := structuredPrize(doc); ok {
		result.Prize = draw.String(prize)
	}
	if round, ok := structuredRound(doc); ok {
		result.Round = draw.String(round)
	}
	result.Date = structuredDate(doc, now)

	if !result.Usable() {
		return result, &ParseError{Reason: "no match rows or draw metadata in markup"}
	}
	return result, nil
}

func isMatchBlock(_ int, s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	return matchClassPattern.MatchString(class)
}

// matchBlocks reads elements classed as partido/match/game. Containers of
// other match blocks are skipped so a list wrapper is not read as a row.
func matchBlocks(doc *goquery.Document, now time.Time) []draw.MatchRecord {
	var matches []draw.MatchRecord

	doc.Find("[class]").FilterFunction(isMatchBlock).Each(func(_ int, s *goquery.Selection) {
		if s.Find("[class]").FilterFunction(isMatchBlock).Length() > 0 {
			return
		}

		home := selectionText(s.Find(homeSelector).First())
		away := selectionText(s.Find(awaySelector).First())
		if home == "" && away == "" {
			h, a, ok := parseVersusLine(selectionText(s))
			if !ok {
				return
			}
			home, away = h, a
		}

		// A missing team element must not drop the row.
		if home == "" {
			home = draw.PlaceholderTeam
		}
		if away == "" {
			away = draw.PlaceholderTeam
		}

		matches = append(matches, draw.MatchRecord{
			HomeTeam:    home,
			AwayTeam:    away,
			ScheduledAt: scheduledAt(s, now),
		})
	})

	return matches
}

// tableRows reads <tr> rows whose cells hold two team names. Number, "vs"
// and date cells are skipped. A row counts as a match when it carries a
// position number or a "vs" cell, or when its table has at least two rows
// of team pairs; a lone pair of words is more likely a legend.
func tableRows(doc *goquery.Document, now time.Time) []draw.MatchRecord {
	var matches []draw.MatchRecord

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var shaped, loose []draw.MatchRecord

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if row.Closest("table").Get(0) != table.Get(0) {
				return
			}

			var teams []string
			var when *time.Time
			matchShaped := false
			row.Find("td").Each(func(_ int, td *goquery.Selection) {
				text := selectionText(td)
				if text == "" {
					return
				}
				if positionCellPattern.MatchString(text) || isVersusWord(text) {
					matchShaped = true
					return
				}
				if t := draw.ParseDate(text, now); !t.IsZero() {
					if when == nil {
						when = &t
					}
					return
				}
				if looksLikeTeam(text) {
					teams = append(teams, text)
				}
			})

			if len(teams) < 2 || strings.EqualFold(teams[0], teams[1]) {
				return
			}
			m := draw.MatchRecord{HomeTeam: teams[0], AwayTeam: teams[1], ScheduledAt: when}
			if matchShaped {
				shaped = append(shaped, m)
			} else {
				loose = append(loose, m)
			}
		})

		switch {
		case len(shaped) > 0:
			matches = append(matches, shaped...)
		case len(loose) >= 2:
			matches = append(matches, loose...)
		}
	})

	return matches
}

func isVersusWord(text string) bool {
	switch strings.ToLower(text) {
	case "vs", "vs.", "v", "contra", "-":
		return true
	}
	return false
}

// versusTextNodes scans raw text nodes for "Home vs Away".
func versusTextNodes(doc *goquery.Document, _ time.Time) []draw.MatchRecord {
	var matches []draw.MatchRecord

	doc.Find("body, body *").Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node.Type != html.TextNode {
			return
		}
		if parent := node.Parent; parent != nil && (parent.Data == "script" || parent.Data == "style") {
			return
		}
		if home, away, ok := parseVersusLine(node.Data); ok {
			matches = append(matches, draw.MatchRecord{HomeTeam: home, AwayTeam: away})
		}
	})

	return matches
}

func looksLikeTeam(text string) bool {
	if len([]rune(text)) < 3 || !teamNamePattern.MatchString(text) {
		return false
	}
	lower := strings.ToLower(text)
	if isVersusWord(lower) || headerCellPattern.MatchString(text) {
		return false
	}
	return !infoLabelPattern.MatchString(text)
}

func scheduledAt(s *goquery.Selection, now time.Time) *time.Time {
	var when *time.Time
	s.Find(timeSelector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := selectionText(el)
		if attr, ok := el.Attr("datetime"); ok {
			text = attr
		}
		if t := draw.ParseDate(text, now); !t.IsZero() {
			when = &t
			return false
		}
		return true
	})
	return when
}

func structuredPrize(doc *goquery.Document) (string, bool) {
	for _, sel := range prizeSelectors {
		var prize string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := findPrize(selectionText(s)); ok {
				prize = v
				return false
			}
			return true
		})
		if prize != "" {
			return prize, true
		}
	}
	return "", false
}

func structuredDate(doc *goquery.Document, now time.Time) time.Time {
	for _, sel := range dateSelectors {
		var found time.Time
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := selectionText(s)
			if attr, ok := s.Attr("datetime"); ok {
				text = attr
			}
			found = draw.ParseDate(text, now)
			return found.IsZero()
		})
		if !found.IsZero() {
			return found
		}
	}
	return time.Time{}
}

func structuredRound(doc *goquery.Document) (string, bool) {
	for _, sel := range roundSelectors {
		var round string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := selectionText(s)
			if v, ok := findRound(text); ok {
				round = v
				return false
			}
			if m := bareRoundPattern.FindStringSubmatch(text); m != nil {
				round = m[1]
				return false
			}
			return true
		})
		if round != "" {
			return round, true
		}
	}
	return "", false
}

func selectionText(s *goquery.Selection) string {
	return normalizeSpace(s.Text())
}
