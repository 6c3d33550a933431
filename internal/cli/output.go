package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/pipeline"
	"github.com/leonmuri/Progol-aleatorio2/internal/storage"
)

// OutputFormat specifies the output format for listings
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// MatchesResult is the output of the matches command
type MatchesResult struct {
	AcquiredAt time.Time          `json:"acquired_at"`
	Stage      draw.Stage         `json:"stage"`
	BestEffort bool               `json:"best_effort"`
	Matches    []draw.MatchRecord `json:"matches"`
}

// DrawResult is the output of the draw command
type DrawResult struct {
	AcquiredAt time.Time     `json:"acquired_at"`
	Stage      draw.Stage    `json:"stage"`
	BestEffort bool          `json:"best_effort"`
	Draw       draw.DrawInfo `json:"draw"`
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeMatches writes the resolved matches in the given format
func writeMatches(w io.Writer, entry pipeline.Entry, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, MatchesResult{
			AcquiredAt: entry.AcquiredAt,
			Stage:      entry.MatchStage,
			BestEffort: entry.MatchStage.BestEffort(),
			Matches:    entry.Matches,
		})
	}

	if entry.MatchStage.BestEffort() {
		fmt.Fprintf(w, "Best effort: matches from the %s stage\n\n", entry.MatchStage)
	}
	for _, m := range entry.Matches {
		fmt.Fprintf(w, "%2d. %s vs %s", m.Position, m.HomeTeam, m.AwayTeam)
		if m.ScheduledAt != nil {
			fmt.Fprintf(w, " (%s)", m.ScheduledAt.Format("02/01/2006"))
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d matches\n", len(entry.Matches))
	return err
}

// writeDraw writes the resolved draw info in the given format
func writeDraw(w io.Writer, entry pipeline.Entry, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, DrawResult{
			AcquiredAt: entry.AcquiredAt,
			Stage:      entry.InfoStage,
			BestEffort: entry.InfoStage.BestEffort(),
			Draw:       entry.Info,
		})
	}

	if entry.InfoStage.BestEffort() {
		fmt.Fprintf(w, "Best effort: draw info from the %s stage\n\n", entry.InfoStage)
	}
	fmt.Fprintf(w, "Concurso: %s\n", entry.Info.Round("N/A"))
	fmt.Fprintf(w, "Sorteo:   %s\n", entry.Info.DrawDate.Format("Monday 02/01/2006"))
	_, err := fmt.Fprintf(w, "Bolsa:    %s\n", entry.Info.Prize("N/A"))
	return err
}

// writeTickets writes a history listing
func writeTickets(w io.Writer, tickets []storage.Ticket, format OutputFormat, verbose bool) error {
	if format == FormatJSON {
		return writeJSON(w, tickets)
	}

	if len(tickets) == 0 {
		fmt.Fprintln(w, "No saved tickets.")
		return nil
	}

	for _, t := range tickets {
		fmt.Fprintf(w, "#%d  %s  concurso %s  sorteo %s  %s\n",
			t.ID,
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			t.Sheet.Draw.Round("N/A"),
			t.Sheet.Draw.DrawDate.Format("02/01/2006"),
			pickString(t),
		)
		if verbose {
			fmt.Fprintf(w, "     Stage: %s, %d matches\n", t.Sheet.Stage, len(t.Sheet.Matches))
		}
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d tickets\n", len(tickets))
	return err
}

// pickString renders a ticket's picks in match order, e.g. "1X2-1".
func pickString(t storage.Ticket) string {
	var b strings.Builder
	for _, m := range t.Sheet.Matches {
		if p, ok := t.Sheet.Picks[m.Position]; ok {
			b.WriteString(string(p))
		} else {
			b.WriteString("-")
		}
	}
	return b.String()
}

// writeStats writes history statistics
func writeStats(w io.Writer, stats storage.Stats, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, stats)
	}

	fmt.Fprintf(w, "Saved tickets: %d\n", stats.Total)
	if stats.Total == 0 {
		return nil
	}
	fmt.Fprintf(w, "First: %s\n", stats.First.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Last:  %s\n", stats.Last.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Picks: Locales %d | Empates %d | Visitantes %d\n",
		stats.Picks[draw.PickHome], stats.Picks[draw.PickDraw], stats.Picks[draw.PickAway])
	_, err := fmt.Fprintf(w, "Rounds: %d\n", len(stats.Rounds))
	return err
}
