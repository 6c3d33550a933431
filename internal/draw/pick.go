package draw

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Pick is the predicted outcome of a single match.
type Pick string

const (
	PickHome Pick = "1"
	PickDraw Pick = "X"
	PickAway Pick = "2"
)

// AllPicks lists the valid picks in ticket order.
var AllPicks = []Pick{PickHome, PickDraw, PickAway}

// ErrInvalidPick is returned when a pick code is not 1, X or 2.
var ErrInvalidPick = errors.New("invalid pick")

// Label returns the Spanish label printed on tickets.
func (p Pick) Label() string {
	switch p {
	case PickHome:
		return "Local"
	case PickDraw:
		return "Empate"
	case PickAway:
		return "Visitante"
	default:
		return ""
	}
}

// ParsePick accepts 1/X/2 as well as the L/E/V initials.
func ParsePick(s string) (Pick, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "L", "LOCAL":
		return PickHome, nil
	case "X", "E", "0", "EMPATE":
		return PickDraw, nil
	case "2", "V", "VISITANTE":
		return PickAway, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPick, s)
}

// ParsePicks parses a compact pick string such as "1X21XX2..." or
// "1,X,2". Separators (spaces, commas, dashes) are ignored.
func ParsePicks(s string) ([]Pick, error) {
	picks := make([]Pick, 0, MaxMatches)
	for i, r := range s {
		switch r {
		case ' ', ',', '-', '|', '\t', '\n':
			continue
		}
		p, err := ParsePick(string(r))
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i+1, err)
		}
		picks = append(picks, p)
	}
	return picks, nil
}

// RandomPicks draws n picks uniformly.
func RandomPicks(r *rand.Rand, n int) []Pick {
	picks := make([]Pick, n)
	for i := range picks {
		picks[i] = AllPicks[r.IntN(len(AllPicks))]
	}
	return picks
}

// PicksByPosition maps picks onto match positions in order. Extra picks are
// dropped; matches without a pick are left out of the map.
func PicksByPosition(matches []MatchRecord, picks []Pick) map[int]Pick {
	out := make(map[int]Pick, len(matches))
	for i, m := range matches {
		if i >= len(picks) {
			break
		}
		out[m.Position] = picks[i]
	}
	return out
}

// Stats summarises the picks on a ticket.
type Stats struct {
	Total    int              `json:"total"`
	Counts   map[Pick]int     `json:"counts"`
	Percents map[Pick]float64 `json:"percents"`
}

// Summarize counts the picks for the given matches.
func Summarize(matches []MatchRecord, picks map[int]Pick) Stats {
	stats := Stats{
		Total:    len(matches),
		Counts:   make(map[Pick]int),
		Percents: make(map[Pick]float64),
	}
	for _, m := range matches {
		if p, ok := picks[m.Position]; ok {
			stats.Counts[p]++
		}
	}
	if stats.Total == 0 {
		return stats
	}
	for p, c := range stats.Counts {
		stats.Percents[p] = float64(c) / float64(stats.Total) * 100
	}
	return stats
}
