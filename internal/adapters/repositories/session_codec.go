package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"property-insight-service/internal/domain"
)

// sessionColumns holds the JSON-encoded parts of a session row.
type sessionColumns struct {
	listing   sql.NullString
	distances sql.NullString
	analysis  sql.NullString
}

func encodeJSON(v any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func encodeSession(s *domain.Session) (sessionColumns, error) {
	var cols sessionColumns
	var err error

	if cols.listing, err = encodeJSON(s.Listing, s.Listing == nil); err != nil {
		return cols, fmt.Errorf("encode listing: %w", err)
	}
	if cols.distances, err = encodeJSON(s.Distances, s.Distances == nil); err != nil {
		return cols, fmt.Errorf("encode distances: %w", err)
	}
	if cols.analysis, err = encodeJSON(s.Analysis, s.Analysis == nil); err != nil {
		return cols, fmt.Errorf("encode analysis: %w", err)
	}

	return cols, nil
}

func decodeSession(s *domain.Session, cols sessionColumns) error {
	if cols.listing.Valid {
		var l domain.Listing
		if err := json.Unmarshal([]byte(cols.listing.String), &l); err != nil {
			return fmt.Errorf("decode listing: %w", err)
		}
		s.Listing = &l
	}
	if cols.distances.Valid {
		if err := json.Unmarshal([]byte(cols.distances.String), &s.Distances); err != nil {
			return fmt.Errorf("decode distances: %w", err)
		}
	}
	if cols.analysis.Valid {
		if err := json.Unmarshal([]byte(cols.analysis.String), &s.Analysis); err != nil {
			return fmt.Errorf("decode analysis: %w", err)
		}
	}
	return nil
}
