package save

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteStore appends every save as a new row; Load returns the newest row for a slot
type SQLiteStore struct {
	sqlDB *sql.DB
}

// pragmas run on every pooled connection; modernc only reads the _pragma=name(value) form
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

func sqliteDSN(path string) string {
	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}
	return "file:" + filepath.Clean(path) + "?" + strings.Join(params, "&")
}

// OpenSQLite opens the database at path and ensures the schema exists
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	sqlDB, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save appends rec under slot
func (s *SQLiteStore) Save(ctx context.Context, slot string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return errSlotRequired
	}
	id, err := parseID(rec.ID)
	if err != nil {
		return err
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}
	if rec.Data == nil {
		rec.Data = []byte{}
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO saves (id, slot, tick, data, saved_at)
VALUES (?, ?, ?, ?, ?)
`,
		id.String(),
		slot,
		int64(rec.Tick),
		rec.Data,
		rec.SavedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert save: %w", err)
	}
	return nil
}

// Load returns the newest record saved under slot
func (s *SQLiteStore) Load(ctx context.Context, slot string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Record{}, fmt.Errorf("storage is not configured")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return Record{}, errSlotRequired
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, tick, data, saved_at
FROM saves
WHERE slot = ?
ORDER BY saved_at DESC, rowid DESC
LIMIT 1
`, slot)

	var (
		rec     = Record{Slot: slot}
		tick    int64
		savedAt int64
	)
	if err := row.Scan(&rec.ID, &tick, &rec.Data, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load save: %w", err)
	}
	rec.Tick = uint64(tick)
	rec.SavedAt = time.Unix(0, savedAt)
	return rec, nil
}

// History returns up to limit records for slot, newest first, without their data
func (s *SQLiteStore) History(ctx context.Context, slot string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, tick, saved_at
FROM saves
WHERE slot = ?
ORDER BY saved_at DESC, rowid DESC
LIMIT ?
`, slot, limit)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec     = Record{Slot: slot}
			tick    int64
			savedAt int64
		)
		if err := rows.Scan(&rec.ID, &tick, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		rec.Tick = uint64(tick)
		rec.SavedAt = time.Unix(0, savedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return records, nil
}
