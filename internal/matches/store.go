// Package matches persists matches and their append-only point logs in
// Postgres.
package matches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// Match lifecycle.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// ErrNotFound is returned when no match exists with the requested ID.
var ErrNotFound = errors.New("match not found")

// ErrAbandoned is returned when a point is appended to an abandoned match.
var ErrAbandoned = errors.New("match is abandoned")

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Match is one stored match. Score is the last cached score and may be nil
// before the first point is recorded.
type Match struct {
	ID        string            `json:"id"`
	Player1   string            `json:"player1"`
	Player2   string            `json:"player2"`
	Format    match.MatchFormat `json:"format"`
	Status    string            `json:"status"`
	Score     *scoring.Score    `json:"score,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store provides match and point log persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const matchColumns = `id, player1, player2, format, status, score, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*Match, error) {
	var (
		m      Match
		format []byte
		score  []byte
	)
	if err := row.Scan(&m.ID, &m.Player1, &m.Player2, &format, &m.Status, &score, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(format, &m.Format); err != nil {
		return nil, fmt.Errorf("decode format of match %s: %w", m.ID, err)
	}
	if len(score) > 0 {
		m.Score = &scoring.Score{}
		if err := json.Unmarshal(score, m.Score); err != nil {
			return nil, fmt.Errorf("decode score of match %s: %w", m.ID, err)
		}
	}
	return &m, nil
}

// CreateMatch validates the format and inserts a new in-progress match.
func (s *Store) CreateMatch(ctx context.Context, player1, player2 string, format match.MatchFormat) (*Match, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	formatJSON, err := json.Marshal(format)
	if err != nil {
		return nil, fmt.Errorf("encode format: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO matches (id, player1, player2, format, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+matchColumns,
		uuid.NewString(), player1, player2, formatJSON, StatusInProgress,
	)
	m, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

// GetMatch retrieves a match by ID.
func (s *Store) GetMatch(ctx context.Context, id string) (*Match, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, ErrNotFound)
	}
	m, err := scanMatch(s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, err)
	}
	return m, nil
}

// ListMatches returns the most recent matches, optionally filtered by
// status. A limit of zero or less means 50.
func (s *Store) ListMatches(ctx context.Context, status string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		status, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// LoadPointLog returns the match's points in point-number order. Only input
// fields are populated.
func (s *Store) LoadPointLog(ctx context.Context, matchID string) ([]match.PointEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT point_number, winner, server, outcome
		 FROM points WHERE match_id = $1
		 ORDER BY point_number`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("load point log %s: %w", matchID, err)
	}
	defer rows.Close()

	var points []match.PointEvent
	for rows.Next() {
		var p match.PointEvent
		if err := rows.Scan(&p.PointNumber, &p.Winner, &p.Server, &p.Outcome); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// AppendPoint adds p to the end of the match's point log. The match row is
// locked for the duration of the transaction so concurrent appends are
// serialised, and p must carry the next point number.
func (s *Store) AppendPoint(ctx context.Context, matchID string, p match.PointEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM matches WHERE id = $1 FOR UPDATE`, matchID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("append point: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock match %s: %w", matchID, err)
	}
	if status == StatusAbandoned {
		return fmt.Errorf("append point %s: %w", matchID, ErrAbandoned)
	}

	var count, last int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(point_number), 0) FROM points WHERE match_id = $1`, matchID,
	).Scan(&count, &last); err != nil {
		return fmt.Errorf("read log tail: %w", err)
	}
	if err := match.ValidateNext(count, last, p); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO points (match_id, point_number, winner, server, outcome)
		 VALUES ($1, $2, $3, $4, $5)`,
		matchID, p.PointNumber, p.Winner, p.Server, p.Outcome,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &match.LogIntegrityError{Index: count, PointNumber: p.PointNumber, Reason: "duplicate point number"}
		}
		return fmt.Errorf("insert point %d: %w", p.PointNumber, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE matches SET updated_at = now() WHERE id = $1`, matchID,
	); err != nil {
		return fmt.Errorf("touch match: %w", err)
	}

	return tx.Commit()
}

// SaveScore caches the latest computed score on the match row.
func (s *Store) SaveScore(ctx context.Context, matchID string, score *scoring.Score) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("encode score: %w", err)
	}
	return s.exec(ctx, "save score",
		`UPDATE matches SET score = $2, updated_at = now() WHERE id = $1`, matchID, data)
}

// SetStatus moves a match through its lifecycle.
func (s *Store) SetStatus(ctx context.Context, matchID, status string) error {
	switch status {
	case StatusInProgress, StatusCompleted, StatusAbandoned:
	default:
		return fmt.Errorf("unknown match status %q", status)
	}
	return s.exec(ctx, "set status",
		`UPDATE matches SET status = $2, updated_at = now() WHERE id = $1`, matchID, status)
}

func (s *Store) exec(ctx context.Context, what, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
