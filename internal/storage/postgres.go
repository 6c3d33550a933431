package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
)

const connectTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS quinielas (
	id SERIAL PRIMARY KEY,
	fecha_generacion TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	num_partidos INTEGER NOT NULL,
	datos JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quinielas_fecha ON quinielas(fecha_generacion DESC);
`

// PostgresStore keeps tickets in the quinielas table. Whether the database
// is usable is decided once, when the store is created; an unavailable
// store answers every call with a safe default instead of failing loudly.
type PostgresStore struct {
	db        *sql.DB
	available bool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn and creates the schema. Connection
// problems are logged and leave the store unavailable.
func NewPostgresStore(ctx context.Context, dsn string) *PostgresStore {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Warn("opening postgres connection", nil, err)
		return &PostgresStore{}
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Warn("pinging postgres", nil, err)
		_ = db.Close()
		return &PostgresStore{}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Warn("initializing postgres schema", nil, err)
		_ = db.Close()
		return &PostgresStore{}
	}

	logger.Info("postgres ticket storage initialized", nil)
	return &PostgresStore{db: db, available: true}
}

// Available reports whether the database was reachable at startup.
func (s *PostgresStore) Available() bool {
	return s.available
}

func (s *PostgresStore) Save(ctx context.Context, sheet export.Sheet) (Ticket, error) {
	if !s.available {
		return Ticket{}, ErrUnavailable
	}

	data, err := json.Marshal(sheet)
	if err != nil {
		return Ticket{}, fmt.Errorf("encoding ticket: %w", err)
	}

	ticket := Ticket{Sheet: sheet}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO quinielas (num_partidos, datos) VALUES ($1, $2) RETURNING id, fecha_generacion`,
		len(sheet.Matches), string(data),
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return Ticket{}, fmt.Errorf("inserting ticket: %w", err)
	}
	return ticket, nil
}

// List returns an empty list when the database is unavailable.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Ticket, error) {
	if !s.available {
		return []Ticket{}, nil
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fecha_generacion, datos FROM quinielas ORDER BY fecha_generacion DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tickets: %w", err)
	}
	return tickets, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Ticket, error) {
	if !s.available {
		return Ticket{}, ErrUnavailable
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, fecha_generacion, datos FROM quinielas WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Ticket{}, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
	}
	return t, err
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	if !s.available {
		return ErrUnavailable
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM quinielas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ticket %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting ticket %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("ticket %d: %w", id, ErrNotFound)
	}
	return nil
}

// Stats returns zero stats when the database is unavailable. Pick and round
// counts need the payloads, so every row is read.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	if !s.available {
		return summarize(nil), nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, fecha_generacion, datos FROM quinielas`)
	if err != nil {
		return Stats{}, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return Stats{}, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("reading tickets: %w", err)
	}
	return summarize(tickets), nil
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row scanner) (Ticket, error) {
	var (
		t    Ticket
		data []byte
	)
	if err := row.Scan(&t.ID, &t.CreatedAt, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ticket{}, err
		}
		return Ticket{}, fmt.Errorf("scanning ticket: %w", err)
	}
	if err := json.Unmarshal(data, &t.Sheet); err != nil {
		return Ticket{}, fmt.Errorf("decoding ticket %d: %w", t.ID, err)
	}
	return t, nil
}
