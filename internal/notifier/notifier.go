package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
)

// MaxPostLength is the Twitter character limit.
const MaxPostLength = 280

// Notifier defines the interface for publishing tickets
type Notifier interface {
	// Notify posts one message per sheet
	Notify(sheets []export.Sheet) error
}

// Multi sends to every notifier, even after one fails.
type Multi []Notifier

func (m Multi) Notify(sheets []export.Sheet) error {
	var result *multierror.Error
	for _, n := range m {
		if err := n.Notify(sheets); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// formatPost formats a sheet as a post of at most MaxPostLength characters
func formatPost(sheet export.Sheet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⚽ Quiniela Progol #%d\n", sheet.Number)
	if sheet.Draw.RoundNumber != nil {
		fmt.Fprintf(&b, "🏆 Concurso %s · ", *sheet.Draw.RoundNumber)
	} else {
		b.WriteString("🏆 ")
	}
	fmt.Fprintf(&b, "Sorteo %s\n", sheet.Draw.DrawDate.Format("02/01/2006"))
	if sheet.Draw.PrizeAmount != nil {
		fmt.Fprintf(&b, "💰 Bolsa: %s\n", *sheet.Draw.PrizeAmount)
	}

	b.WriteString("\n")
	for i, m := range sheet.Matches {
		pick := "-"
		if p, ok := sheet.Picks[m.Position]; ok {
			pick = string(p)
		}
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d:%s", m.Position, pick)
	}
	b.WriteString("\n")

	stats := sheet.Stats()
	fmt.Fprintf(&b, "L %d · E %d · V %d\n",
		stats.Counts[draw.PickHome], stats.Counts[draw.PickDraw], stats.Counts[draw.PickAway])
	if sheet.Stage.BestEffort() {
		b.WriteString("(partidos aproximados)\n")
	}
	b.WriteString("\n#Progol #Quiniela")

	post := b.String()
	if utf8.RuneCountInString(post) > MaxPostLength {
		post = string([]rune(post)[:MaxPostLength-3]) + "..."
	}
	return post
}
