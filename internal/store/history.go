package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/phishguard/internal/model"
)

// Kind is the scan surface a history record came from.
type Kind string

// Scan surfaces.
const (
	KindURL   Kind = "url"
	KindEmail Kind = "email"
	KindFile  Kind = "file"
	KindImage Kind = "image"
)

// Record is one stored scan.
type Record struct {
	// ID is a random UUID assigned on insert.
	ID string `json:"id"`

	// Kind is the scan surface.
	Kind Kind `json:"kind"`

	// Target is what was scanned: a URL, an email sender, or a file name.
	Target string `json:"target"`

	// Result is the verdict returned by the backend.
	Result model.ScanResult `json:"result"`

	// Digest is the SHA3-256 of the scanned bytes for file and image scans.
	Digest string `json:"digest,omitempty"`

	// Timestamp is when the record was stored.
	Timestamp time.Time `json:"timestamp"`
}

// AddHistory stores rec and returns it with ID and Timestamp filled in.
func (s *DB) AddHistory(ctx context.Context, rec Record) (Record, error) {
	rec.ID = uuid.NewString()
	rec.Timestamp = s.now().UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, kind, target, status, score, details, digest, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Target,
		string(rec.Result.Status), rec.Result.Score, rec.Result.Details,
		rec.Digest, rec.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to insert history record: %w", err)
	}
	return rec, nil
}

// GetHistory returns the record with the given id.
func (s *DB) GetHistory(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, target, status, score, details, digest, timestamp
		 FROM history WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get history record: %w", err)
	}
	return rec, nil
}

// ListHistory returns up to limit records, newest first. An empty kind
// matches every surface; a non-positive limit returns everything.
func (s *DB) ListHistory(ctx context.Context, kind Kind, limit int) ([]Record, error) {
	query := `SELECT id, kind, target, status, score, details, digest, timestamp FROM history`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY timestamp DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ClearHistory deletes every history record and returns how many were removed.
func (s *DB) ClearHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (Record, error) {
	var (
		rec       Record
		kind      string
		status    string
		details   sql.NullString
		digest    sql.NullString
		timestamp string
	)
	if err := r.Scan(&rec.ID, &kind, &rec.Target, &status, &rec.Result.Score,
		&details, &digest, &timestamp); err != nil {
		return Record{}, err
	}
	rec.Kind = Kind(kind)
	rec.Result.Status = model.Status(status)
	rec.Result.Details = details.String
	rec.Digest = digest.String
	rec.Timestamp = parseTimestamp(timestamp)
	return rec, nil
}
