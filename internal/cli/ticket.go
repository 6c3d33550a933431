package cli

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
	"github.com/leonmuri/Progol-aleatorio2/internal/pipeline"
	"github.com/leonmuri/Progol-aleatorio2/internal/storage"
)

// MaxTickets bounds --count.
const MaxTickets = 20

type ticketOptions struct {
	picks  string
	random bool
	count  int
	seed   uint64
	save   bool
	format string
	out    string
}

func newTicketCmd(a *app) *cobra.Command {
	opts := &ticketOptions{}

	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Fill in one or more Progol tickets",
		Long: `Fill in Progol tickets for the current matches.
Picks are given as a string of 1 (home), X (draw) and 2 (away), in match
order, e.g. --picks 1X21X21X21X21X. Without --picks the picks are random.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTicket(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.picks, "picks", "", "Picks in match order, e.g. 1X21X2...")
	cmd.Flags().BoolVar(&opts.random, "random", false, "Pick at random (the default without --picks)")
	cmd.Flags().IntVar(&opts.count, "count", 1, "Number of random tickets to generate")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for random picks (0 means a fresh seed)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the tickets to history")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json, ics or png")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write to this file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("picks", "random")

	return cmd
}

func (o *ticketOptions) validate() (export.Format, error) {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return "", err
	}
	if o.count < 1 || o.count > MaxTickets {
		return "", fmt.Errorf("--count must be between 1 and %d", MaxTickets)
	}
	if o.picks != "" && o.count > 1 {
		return "", errors.New("--count needs random picks")
	}
	if format == export.FormatPNG && o.out == "" {
		return "", errors.New("png output needs --out")
	}
	return format, nil
}

// rng returns the random source for this run.
func (o *ticketOptions) rng() *rand.Rand {
	if o.seed != 0 {
		return rand.New(rand.NewPCG(o.seed, o.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (a *app) runTicket(cmd *cobra.Command, opts *ticketOptions) error {
	format, err := opts.validate()
	if err != nil {
		return err
	}

	var fixed []draw.Pick
	if opts.picks != "" {
		if fixed, err = draw.ParsePicks(opts.picks); err != nil {
			return fmt.Errorf("parsing picks: %w", err)
		}
	}

	entry := a.newPipeline().Resolve(cmd.Context(), false)
	if len(fixed) > len(entry.Matches) {
		return fmt.Errorf("got %d picks for %d matches", len(fixed), len(entry.Matches))
	}

	sheets := buildSheets(entry, fixed, opts.count, opts.rng(), time.Now())

	if opts.save {
		store, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		for _, sheet := range sheets {
			ticket, err := store.Save(cmd.Context(), sheet)
			if errors.Is(err, storage.ErrUnavailable) {
				logger.Warn("ticket not saved", logger.Fields{"ticket": sheet.Number}, err)
				continue
			}
			if err != nil {
				return fmt.Errorf("saving ticket: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved ticket %d as #%d\n", sheet.Number, ticket.ID)
		}
	}

	return writeSheets(cmd, sheets, format, opts.out)
}

// buildSheets fills count sheets with fixed picks, or random ones when
// fixed is empty.
func buildSheets(entry pipeline.Entry, fixed []draw.Pick, count int, r *rand.Rand, now time.Time) []export.Sheet {
	sheets := make([]export.Sheet, count)
	for i := range sheets {
		picks := fixed
		if len(picks) == 0 {
			picks = draw.RandomPicks(r, len(entry.Matches))
		}
		sheets[i] = export.NewSheet(i+1, entry.Matches, entry.Info, entry.Stage(), picks, now)
	}
	return sheets
}

// writeSheets writes to stdout or --out. Formats that hold one ticket get
// one file per sheet, numbered when there are several.
func writeSheets(cmd *cobra.Command, sheets []export.Sheet, format export.Format, out string) error {
	if out == "" {
		return export.WriteAll(cmd.OutOrStdout(), sheets, format)
	}

	if format == export.FormatText || format == export.FormatJSON || len(sheets) == 1 {
		return writeFile(cmd, out, func(buf *bytes.Buffer) error {
			return export.WriteAll(buf, sheets, format)
		})
	}

	ext := filepath.Ext(out)
	base := strings.TrimSuffix(out, ext)
	for _, sheet := range sheets {
		path := fmt.Sprintf("%s-%d%s", base, sheet.Number, ext)
		if err := writeFile(cmd, path, func(buf *bytes.Buffer) error {
			return export.Write(buf, sheet, format)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(cmd *cobra.Command, path string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
