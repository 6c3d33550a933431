package scraper

import (
	"fmt"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
)

// PartialResult holds whatever one extraction stage could recover.
// Date is the zero time when no draw date was found.
type PartialResult struct {
	Matches []draw.MatchRecord
	Prize   *string
	Date    time.Time
	Round   *string
}

// HasInfo reports whether any draw-info field was recovered.
func (r PartialResult) HasInfo() bool {
	return r.Prize != nil || !r.Date.IsZero() || r.Round != nil
}

// Usable reports whether the result clears the minimal threshold: at least
// one match or at least one draw-info field.
func (r PartialResult) Usable() bool {
	return len(r.Matches) > 0 || r.HasInfo()
}

// Complete reports whether nothing is left for a later stage to fill in.
func (r PartialResult) Complete() bool {
	return len(r.Matches) > 0 && r.Prize != nil && !r.Date.IsZero() && r.Round != nil
}

// Merge fills the gaps in r with values from fallback. Values already in r
// win on conflict.
func (r PartialResult) Merge(fallback PartialResult) PartialResult {
	out := r
	if len(out.Matches) == 0 {
		out.Matches = fallback.Matches
	}
	if out.Prize == nil {
		out.Prize = fallback.Prize
	}
	if out.Date.IsZero() {
		out.Date = fallback.Date
	}
	if out.Round == nil {
		out.Round = fallback.Round
	}
	return out
}

// ParseError reports that structured parsing produced nothing usable.
// It never leaves the pipeline.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
