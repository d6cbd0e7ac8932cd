package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"time"
)

// Postgres-backed implementation of the SessionRepository port.
type SQLSessionRepository struct{ DB *sql.DB }

func NewSQLSessionRepository(db *sql.DB) *SQLSessionRepository {
	return &SQLSessionRepository{DB: db}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *SQLSessionRepository) Create(ctx context.Context, sess *domain.Session) (err error) {
	defer obs.Time(ctx, "sessions.Create")(&err)

	if s.DB == nil {
		return errors.New("sql session repository: DB is nil")
	}

	cols, err := encodeSession(sess)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sess.ID, err)
	}

	q := `
	INSERT INTO analysis_sessions (id, status, url, error, listing, distances, analysis, created_at, initialized_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	if _, err := s.DB.ExecContext(ctx, q,
		sess.ID, string(sess.Status), sess.URL, sess.Error,
		cols.listing, cols.distances, cols.analysis,
		sess.CreatedAt.UTC(), nullTime(sess.InitializedAt),
	); err != nil {
		return fmt.Errorf("create session %s: insert: %w", sess.ID, err)
	}

	return nil
}

func (s *SQLSessionRepository) Get(ctx context.Context, id string) (_ *domain.Session, err error) {
	defer obs.Time(ctx, "sessions.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql session repository: DB is nil")
	}

	q := `
	SELECT id, status, url, error, listing, distances, analysis, created_at, initialized_at
    FROM analysis_sessions
    WHERE id = $1;
	`

	var (
		sess        domain.Session
		status      string
		cols        sessionColumns
		initialized sql.NullTime
	)
	err = s.DB.QueryRowContext(ctx, q, id).Scan(
		&sess.ID, &status, &sess.URL, &sess.Error,
		&cols.listing, &cols.distances, &cols.analysis,
		&sess.CreatedAt, &initialized,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: scan row: %w", id, err)
	}

	sess.Status = domain.SessionStatus(status)
	if initialized.Valid {
		t := initialized.Time
		sess.InitializedAt = &t
	}

	if err := decodeSession(&sess, cols); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	return &sess, nil
}

func (s *SQLSessionRepository) Update(ctx context.Context, sess *domain.Session) (err error) {
	defer obs.Time(ctx, "sessions.Update")(&err)

	if s.DB == nil {
		return errors.New("sql session repository: DB is nil")
	}

	cols, err := encodeSession(sess)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}

	q := `
	UPDATE analysis_sessions
	SET status = $1,
		error = $2,
		listing = $3,
		distances = $4,
		analysis = $5,
		initialized_at = $6
	WHERE id = $7;
	`
	res, err := s.DB.ExecContext(ctx, q,
		string(sess.Status), sess.Error,
		cols.listing, cols.distances, cols.analysis,
		nullTime(sess.InitializedAt), sess.ID,
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
