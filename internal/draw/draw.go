package draw

import "time"

const (
	// MaxMatches is the number of matches on a Progol ticket.
	MaxMatches = 14

	// PlaceholderTeam stands in for a team name the source page did not provide.
	PlaceholderTeam = "Por definir"
)

// MatchRecord is one row of a Progol ticket.
type MatchRecord struct {
	Position    int        `json:"position"`
	HomeTeam    string     `json:"home_team"`
	AwayTeam    string     `json:"away_team"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// DrawInfo describes the draw a batch of matches belongs to.
// DrawDate is always set; PrizeAmount and RoundNumber are nil when unknown.
type DrawInfo struct {
	PrizeAmount *string   `json:"prize_amount"`
	DrawDate    time.Time `json:"draw_date"`
	RoundNumber *string   `json:"round_number"`
}

// Stage names the pipeline stage that produced a result.
type Stage string

const (
	StageStructured Stage = "structured"
	StagePattern    Stage = "pattern"
	StageSynthetic  Stage = "synthetic"
)

// BestEffort reports whether results from this stage should be flagged as
// degraded to the user.
func (s Stage) BestEffort() bool {
	return s != StageStructured
}

var stageRank = map[Stage]int{
	StageStructured: 0,
	StagePattern:    1,
	StageSynthetic:  2,
}

// Weakest returns whichever of a and b is the less trustworthy source.
func Weakest(a, b Stage) Stage {
	if stageRank[b] > stageRank[a] {
		return b
	}
	return a
}

// String returns a pointer to a copy of s.
func String(s string) *string {
	return &s
}

// Clone returns a deep copy of the draw info.
func (d DrawInfo) Clone() DrawInfo {
	out := DrawInfo{DrawDate: d.DrawDate}
	if d.PrizeAmount != nil {
		out.PrizeAmount = String(*d.PrizeAmount)
	}
	if d.RoundNumber != nil {
		out.RoundNumber = String(*d.RoundNumber)
	}
	return out
}

// Prize returns the prize amount or fallback when unknown.
func (d DrawInfo) Prize(fallback string) string {
	if d.PrizeAmount == nil {
		return fallback
	}
	return *d.PrizeAmount
}

// Round returns the round number or fallback when unknown.
func (d DrawInfo) Round(fallback string) string {
	if d.RoundNumber == nil {
		return fallback
	}
	return *d.RoundNumber
}

// CloneMatches returns a deep copy of records.
func CloneMatches(records []MatchRecord) []MatchRecord {
	if records == nil {
		return nil
	}
	out := make([]MatchRecord, len(records))
	for i, m := range records {
		out[i] = m
		if m.ScheduledAt != nil {
			t := *m.ScheduledAt
			out[i].ScheduledAt = &t
		}
	}
	return out
}

// Renumber copies at most MaxMatches records and assigns contiguous
// positions starting at 1.
func Renumber(records []MatchRecord) []MatchRecord {
	if len(records) > MaxMatches {
		records = records[:MaxMatches]
	}
	out := CloneMatches(records)
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// ValidBatch reports whether records hold 1..MaxMatches entries with
// contiguous positions starting at 1.
func ValidBatch(records []MatchRecord) bool {
	if len(records) == 0 || len(records) > MaxMatches {
		return false
	}
	for i, m := range records {
		if m.Position != i+1 {
			return false
		}
	}
	return true
}
