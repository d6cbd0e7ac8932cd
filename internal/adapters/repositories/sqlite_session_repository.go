package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"time"
)

// SQLite-backed implementation of the SessionRepository port.
type SqliteSessionRepository struct{ DB *sql.DB }

func NewSqliteSessionRepository(db *sql.DB) *SqliteSessionRepository {
	return &SqliteSessionRepository{DB: db}
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// Insert a new session row.
func (s *SqliteSessionRepository) Create(ctx context.Context, sess *domain.Session) error {
	if s.DB == nil {
		return errors.New("sqlite session repository: DB is nil")
	}

	cols, err := encodeSession(sess)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sess.ID, err)
	}

	var initialized sql.NullString
	if sess.InitializedAt != nil {
		initialized = sql.NullString{String: formatTime(*sess.InitializedAt), Valid: true}
	}

	query := `
	INSERT INTO analysis_sessions (
		id,
		status,
		url,
		error,
		listing,
		distances,
		analysis,
		created_at,
		initialized_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query,
		sess.ID, string(sess.Status), sess.URL, sess.Error,
		cols.listing, cols.distances, cols.analysis,
		formatTime(sess.CreatedAt), initialized,
	); err != nil {
		return fmt.Errorf("create session %s: insert: %w", sess.ID, err)
	}

	return nil
}

// Return the session with the given id.
func (s *SqliteSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite session repository: DB is nil")
	}

	query := `
	SELECT
		id,
		status,
		url,
		error,
		listing,
		distances,
		analysis,
		created_at,
		initialized_at
	FROM analysis_sessions
	WHERE id = ?;
	`

	var (
		sess        domain.Session
		status      string
		cols        sessionColumns
		created     string
		initialized sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&sess.ID, &status, &sess.URL, &sess.Error,
		&cols.listing, &cols.distances, &cols.analysis,
		&created, &initialized,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: scan row: %w", id, err)
	}

	sess.Status = domain.SessionStatus(status)
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("get session %s: parse created_at: %w", id, err)
	}
	if initialized.Valid {
		t, err := time.Parse(time.RFC3339Nano, initialized.String)
		if err != nil {
			return nil, fmt.Errorf("get session %s: parse initialized_at: %w", id, err)
		}
		sess.InitializedAt = &t
	}

	if err := decodeSession(&sess, cols); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	return &sess, nil
}

// Overwrite the mutable parts of an existing session.
func (s *SqliteSessionRepository) Update(ctx context.Context, sess *domain.Session) error {
	if s.DB == nil {
		return errors.New("sqlite session repository: DB is nil")
	}

	cols, err := encodeSession(sess)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}

	var initialized sql.NullString
	if sess.InitializedAt != nil {
		initialized = sql.NullString{String: formatTime(*sess.InitializedAt), Valid: true}
	}

	query := `
	UPDATE analysis_sessions
	SET status = ?,
		error = ?,
		listing = ?,
		distances = ?,
		analysis = ?,
		initialized_at = ?
	WHERE id = ?;
	`
	res, err := s.DB.ExecContext(ctx, query,
		string(sess.Status), sess.Error,
		cols.listing, cols.distances, cols.analysis,
		initialized, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session %s: rows affected: %w", sess.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update session %s: %w", sess.ID, ports.ErrNotFound)
	}

	return nil
}
