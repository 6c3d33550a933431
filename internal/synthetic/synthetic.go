package synthetic

import (
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
)

// Pair is one fixture of the built-in roster.
type Pair struct {
	Home string
	Away string
}

// DefaultRoster mixes Liga MX clubs with the European sides that usually
// fill the back half of a Progol ticket.
var DefaultRoster = []Pair{
	{"América", "Chivas"},
	{"Cruz Azul", "Pumas"},
	{"Tigres", "Monterrey"},
	{"Santos", "León"},
	{"Atlas", "Necaxa"},
	{"Pachuca", "Toluca"},
	{"Puebla", "Tijuana"},
	{"Mazatlán", "Querétaro"},
	{"Juárez", "San Luis"},
	{"Barcelona", "Real Madrid"},
	{"Manchester United", "Liverpool"},
	{"Bayern Munich", "Borussia Dortmund"},
	{"Juventus", "Inter Milan"},
	{"Chelsea", "Arsenal"},
}

// Generator produces a full ticket without touching the network.
type Generator struct {
	roster []Pair
}

// New returns a generator that cycles through roster. An empty roster
// selects DefaultRoster.
func New(roster ...Pair) *Generator {
	if len(roster) == 0 {
		roster = DefaultRoster
	}
	return &Generator{roster: append([]Pair(nil), roster...)}
}

// Synthesize returns exactly draw.MaxMatches records and a draw dated the
// Sunday after now. Prize and round are left unknown so callers can tell
// the ticket apart from real data.
func (g *Generator) Synthesize(now time.Time) ([]draw.MatchRecord, draw.DrawInfo) {
	matches := make([]draw.MatchRecord, draw.MaxMatches)
	for i := range matches {
		p := g.roster[i%len(g.roster)]
		matches[i] = draw.MatchRecord{
			Position: i + 1,
			HomeTeam: p.Home,
			AwayTeam: p.Away,
		}
	}
	return matches, draw.DrawInfo{DrawDate: draw.NextSunday(now)}
}
