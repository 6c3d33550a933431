package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/export"
)

const ticketsFile = "quinielas.json"

// fileData is the on-disk layout of a FileStore.
type fileData struct {
	NextID    int64    `json:"next_id"`
	UpdatedAt string   `json:"updated_at,omitempty"`
	Tickets   []Ticket `json:"tickets"`
}

// FileStore keeps tickets in a single JSON file. Safe for concurrent use
// within one process.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
	now     func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the data directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir, err := expandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{
		dataDir: dir,
		now:     time.Now,
	}, nil
}

// Path returns the file tickets are written to.
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, ticketsFile)
}

func (s *FileStore) load() (*fileData, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &fileData{NextID: 1}, nil
		}
		return nil, fmt.Errorf("reading tickets: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parsing tickets: %w", err)
	}
	if fd.NextID < 1 {
		fd.NextID = 1
	}
	return &fd, nil
}

// save writes through a temporary file so a crash never leaves half a file.
func (s *FileStore) save(fd *fileData) error {
	fd.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tickets: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing tickets: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("replacing tickets file: %w", err)
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, sheet export.Sheet) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.load()
	if err != nil {
		return Ticket{}, err
	}

	ticket := Ticket{
		ID:        fd.NextID,
		CreatedAt: s.now().UTC(),
		Sheet:     sheet,
	}
	fd.NextID++
	fd.Tickets = append(fd.Tickets, ticket)

	if err := s.save(fd); err != nil {
		return Ticket{}, err
	}
	return ticket, nil
}

// List returns up to limit tickets, newest first.
func (s *FileStore) List(_ context.Context, limit int) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.load()
	if err != nil {
		return nil, err
	}

	tickets := append([]Ticket(nil), fd.Tickets...)
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets, nil
}

func (s *FileStore) Get(_ context.Context, id int64) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.load()
	if err != nil {
		return Ticket{}, err
	}
	for _, t := range fd.Tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return Ticket{}, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
}

func (s *FileStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.load()
	if err != nil {
		return err
	}
	for i, t := range fd.Tickets {
		if t.ID == id {
			fd.Tickets = append(fd.Tickets[:i], fd.Tickets[i+1:]...)
			return s.save(fd)
		}
	}
	return fmt.Errorf("ticket %d: %w", id, ErrNotFound)
}

func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.load()
	if err != nil {
		return Stats{}, err
	}
	return summarize(fd.Tickets), nil
}

// Available is always true; the data directory was created by NewFileStore.
func (s *FileStore) Available() bool {
	return true
}

func (s *FileStore) Close() error {
	return nil
}
