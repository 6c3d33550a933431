package cli

import (
	"fmt"
	"sort"

	"github.com/leonmuri/Progol-aleatorio2/internal/storage"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByCreated SortOrder = "created"
	SortByDraw    SortOrder = "draw"
	SortByRound   SortOrder = "round"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(s); order {
	case SortByCreated, SortByDraw, SortByRound:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'created', 'draw' or 'round')", s)
}

// sortTickets sorts tickets based on the specified sort order
func sortTickets(tickets []storage.Ticket, sortOrder SortOrder) {
	switch sortOrder {
	case SortByCreated:
		sort.SliceStable(tickets, func(i, j int) bool {
			return compareByCreated(tickets[i], tickets[j])
		})
	case SortByDraw:
		sort.SliceStable(tickets, func(i, j int) bool {
			di, dj := tickets[i].Sheet.Draw.DrawDate, tickets[j].Sheet.Draw.DrawDate
			if !di.Equal(dj) {
				return di.After(dj)
			}
			// If draws are equal, newest ticket first
			return compareByCreated(tickets[i], tickets[j])
		})
	case SortByRound:
		sort.SliceStable(tickets, func(i, j int) bool {
			ri, rj := tickets[i].Sheet.Draw.RoundNumber, tickets[j].Sheet.Draw.RoundNumber
			switch {
			case ri == nil && rj == nil:
			case ri == nil:
				return false
			case rj == nil:
				return true
			case *ri != *rj:
				return compareRounds(*ri, *rj)
			}
			return compareByCreated(tickets[i], tickets[j])
		})
	}
}

// compareByCreated puts the newest ticket first
func compareByCreated(i, j storage.Ticket) bool {
	if !i.CreatedAt.Equal(j.CreatedAt) {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return i.ID > j.ID
}

// compareRounds orders round identifiers highest first, numerically when
// both are numbers.
func compareRounds(a, b string) bool {
	var na, nb int
	_, errA := fmt.Sscanf(a, "%d", &na)
	_, errB := fmt.Sscanf(b, "%d", &nb)
	if errA == nil && errB == nil && na != nb {
		return na > nb
	}
	return a > b
}
