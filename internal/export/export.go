package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
)

// Format specifies the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatICS  Format = "ics"
	FormatPNG  Format = "png"
)

// Disclaimer is printed under every ticket.
const Disclaimer = "Predicciones aleatorias - Solo para entretenimiento"

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatICS, FormatPNG:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	case FormatPNG:
		return "image/png"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Sheet is one filled-in Progol ticket.
type Sheet struct {
	Number      int                `json:"number"`
	Draw        draw.DrawInfo      `json:"draw"`
	Stage       draw.Stage         `json:"stage"`
	Matches     []draw.MatchRecord `json:"matches"`
	Picks       map[int]draw.Pick  `json:"picks"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// NewSheet fills a ticket with picks in match order. Picks beyond the
// last match are dropped.
func NewSheet(number int, matches []draw.MatchRecord, info draw.DrawInfo, stage draw.Stage, picks []draw.Pick, now time.Time) Sheet {
	return Sheet{
		Number:      number,
		Draw:        info.Clone(),
		Stage:       stage,
		Matches:     draw.CloneMatches(matches),
		Picks:       draw.PicksByPosition(matches, picks),
		GeneratedAt: now,
	}
}

// Stats summarises the sheet's picks.
func (s Sheet) Stats() draw.Stats {
	return draw.Summarize(s.Matches, s.Picks)
}

// pickCode returns the pick for position, or "-" when none was made.
func (s Sheet) pickCode(position int) string {
	if p, ok := s.Picks[position]; ok {
		return string(p)
	}
	return "-"
}

// Write renders sheet in the given format.
func Write(w io.Writer, sheet Sheet, format Format) error {
	switch format {
	case FormatText:
		return writeText(w, sheet)
	case FormatJSON:
		return writeJSON(w, sheet)
	case FormatICS:
		_, err := io.WriteString(w, GenerateICS(sheet))
		return err
	case FormatPNG:
		return writePNG(w, sheet)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteAll renders several sheets into one stream. Only text and JSON can
// hold more than one ticket.
func WriteAll(w io.Writer, sheets []Sheet, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, sheets)
	case FormatText:
		for i, sheet := range sheets {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := writeText(w, sheet); err != nil {
				return err
			}
		}
		return nil
	default:
		if len(sheets) != 1 {
			return fmt.Errorf("format %s holds a single ticket, got %d", format, len(sheets))
		}
		return Write(w, sheets[0], format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Header returns the title and draw summary lines shared by every format.
func Header(sheet Sheet) (title, summary string) {
	title = fmt.Sprintf("QUINIELA PROGOL #%d", sheet.Number)
	summary = fmt.Sprintf("Concurso: %s | Sorteo: %s | Bolsa: %s",
		sheet.Draw.Round("N/A"),
		sheet.Draw.DrawDate.Format("02/01/2006"),
		sheet.Draw.Prize("N/A"),
	)
	return title, summary
}

// StatsLine returns the "Locales | Empates | Visitantes" summary.
func StatsLine(stats draw.Stats) string {
	return fmt.Sprintf("Locales: %d | Empates: %d | Visitantes: %d",
		stats.Counts[draw.PickHome], stats.Counts[draw.PickDraw], stats.Counts[draw.PickAway])
}

func writeText(w io.Writer, sheet Sheet) error {
	title, summary := Header(sheet)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, summary)
	if sheet.Stage.BestEffort() {
		fmt.Fprintf(w, "Datos aproximados (fuente: %s)\n", sheet.Stage)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%3s  %-24s %-24s %s\n", "#", "Local", "Visitante", "Pronóstico")
	for _, m := range sheet.Matches {
		pick := sheet.pickCode(m.Position)
		if label := draw.Pick(pick).Label(); label != "" {
			pick += " " + label
		}
		fmt.Fprintf(w, "%3d  %-24s %-24s %s\n",
			m.Position, truncate(m.HomeTeam, 24), truncate(m.AwayTeam, 24), pick)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, StatsLine(sheet.Stats()))
	_, err := fmt.Fprintln(w, Disclaimer)
	return err
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
