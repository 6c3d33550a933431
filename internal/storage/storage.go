package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/config"
	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
)

var (
	// ErrNotFound is returned when no ticket has the requested ID.
	ErrNotFound = errors.New("ticket not found")

	// ErrUnavailable is returned by a store whose backend could not be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Ticket is a saved sheet.
type Ticket struct {
	ID        int64        `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Sheet     export.Sheet `json:"sheet"`
}

// Stats summarises everything saved so far.
type Stats struct {
	Total  int               `json:"total"`
	First  *time.Time        `json:"first,omitempty"`
	Last   *time.Time        `json:"last,omitempty"`
	Picks  map[draw.Pick]int `json:"picks"`
	Rounds map[string]int    `json:"rounds"`
}

// Store persists tickets.
type Store interface {
	Save(ctx context.Context, sheet export.Sheet) (Ticket, error)
	List(ctx context.Context, limit int) ([]Ticket, error)
	Get(ctx context.Context, id int64) (Ticket, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
	Available() bool
	Close() error
}

// Open returns a PostgresStore when cfg names a reachable database and a
// FileStore in cfg.DataDir otherwise.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		pg := NewPostgresStore(ctx, cfg.DatabaseURL)
		if pg.Available() {
			return pg, nil
		}
		logger.Warn("database unavailable, saving tickets to the data directory", logger.Fields{
			"data_dir": cfg.DataDir,
		}, nil)
	}

	fs, err := NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening file store: %w", err)
	}
	return fs, nil
}

// summarize builds Stats from tickets in any order.
func summarize(tickets []Ticket) Stats {
	stats := Stats{
		Picks:  make(map[draw.Pick]int),
		Rounds: make(map[string]int),
	}
	for _, t := range tickets {
		stats.Total++
		created := t.CreatedAt
		if stats.First == nil || created.Before(*stats.First) {
			stats.First = &created
		}
		if stats.Last == nil || created.After(*stats.Last) {
			stats.Last = &created
		}
		for _, p := range t.Sheet.Picks {
			stats.Picks[p]++
		}
		stats.Rounds[t.Sheet.Draw.Round("unknown")]++
	}
	return stats
}

// expandHome expands a leading "~/" to the user's home directory.
func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}
