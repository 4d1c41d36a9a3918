// Package store handles SQLite persistence of files and calculation records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Perdok-cat/Woodcal/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width UTC timestamps so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrFileNotFound is returned when a file id does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrRecordNotFound is returned when a record id does not exist in the file.
	ErrRecordNotFound = errors.New("record not found")
)

// Store wraps SQLite access for files and their records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type column struct {
	name string
	decl string
}

// Columns added after the first schema; older databases get them on open.
var recordColumns = []column{
	{name: "head_hundreds", decl: "INTEGER NOT NULL DEFAULT 0"},
	{name: "head_789", decl: "INTEGER NOT NULL DEFAULT 0"},
	{name: "head_56", decl: "INTEGER NOT NULL DEFAULT 0"},
	{name: "head_4", decl: "INTEGER NOT NULL DEFAULT 0"},
	{name: "head_3", decl: "INTEGER NOT NULL DEFAULT 0"},
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id TEXT NOT NULL,
			round INTEGER NOT NULL DEFAULT 0,
			length REAL NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_file_id ON records(file_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_files_updated_at ON files(updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.ensureColumns("records", recordColumns)
}

func (s *Store) ensureColumns(table string, cols []column) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	existing := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			_ = rows.Close()
			return err
		}
		existing[strings.ToLower(name)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, col := range cols {
		if _, ok := existing[col.name]; ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.name, col.decl)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col.name, err)
		}
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// CreateFile stores a new file with a generated id.
func (s *Store) CreateFile(ctx context.Context, name, note string) (model.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.File{}, fmt.Errorf("file name must not be empty")
	}
	file := model.File{
		ID:   uuid.NewString(),
		Name: name,
		Note: strings.TrimSpace(note),
	}
	if err := s.SaveFile(ctx, file); err != nil {
		return model.File{}, err
	}
	return s.GetFile(ctx, file.ID)
}

// SaveFile inserts or replaces a file. A zero UpdatedAt is set to now.
func (s *Store) SaveFile(ctx context.Context, file model.File) error {
	updated := s.timestamp()
	if !file.UpdatedAt.IsZero() {
		updated = file.UpdatedAt.UTC().Format(timeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, name, note, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, note = excluded.note, updated_at = excluded.updated_at`,
		file.ID, file.Name, file.Note, updated,
	)
	if err != nil {
		return fmt.Errorf("save file %s: %w", file.ID, err)
	}
	return nil
}

// GetFile loads a single file.
func (s *Store) GetFile(ctx context.Context, id string) (model.File, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, note, updated_at FROM files WHERE id = ?`, id)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.File{}, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return file, err
}

// ListFiles returns all files, most recently updated first.
func (s *Store) ListFiles(ctx context.Context) ([]model.File, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, note, updated_at FROM files ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var files []model.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteFile removes a file together with all of its records.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE file_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return nil
	})
}

// InsertRecord appends a record to a file and returns its id. The record's ID field is ignored.
func (s *Store) InsertRecord(ctx context.Context, fileID string, rec model.CalculationRecord) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.touchFile(ctx, tx, fileID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO records (file_id, round, length, head_hundreds, head_789, head_56, head_4, head_3, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID,
			rec.Round,
			rec.Length,
			rec.HeadHundreds,
			rec.Head789,
			rec.Head56,
			rec.Head4,
			rec.Head3,
			rec.Note,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert record into %s: %w", fileID, err)
	}
	return id, nil
}

// UpdateRecord writes only the fields set in patch.
func (s *Store) UpdateRecord(ctx context.Context, fileID string, id int64, patch model.RecordPatch) error {
	if patch.Empty() {
		return nil
	}
	sets, args := patchAssignments(patch)
	args = append(args, fileID, id)
	query := fmt.Sprintf(`UPDATE records SET %s WHERE file_id = ? AND id = ?`, strings.Join(sets, ", "))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
		}
		return s.touchFile(ctx, tx, fileID)
	})
	if err != nil {
		return fmt.Errorf("update record %d in %s: %w", id, fileID, err)
	}
	return nil
}

// LoadRecords returns a file's records in insertion order.
func (s *Store) LoadRecords(ctx context.Context, fileID string) ([]model.CalculationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, round, length, head_hundreds, head_789, head_56, head_4, head_3, note
		 FROM records
		 WHERE file_id = ?
		 ORDER BY id ASC`, fileID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.CalculationRecord
	for rows.Next() {
		var rec model.CalculationRecord
		if err := rows.Scan(&rec.ID, &rec.Round, &rec.Length, &rec.HeadHundreds, &rec.Head789, &rec.Head56, &rec.Head4, &rec.Head3, &rec.Note); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) touchFile(ctx context.Context, tx *sql.Tx, fileID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE files SET updated_at = ? WHERE id = ?`, s.timestamp(), fileID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
	}
	return nil
}

func patchAssignments(p model.RecordPatch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Round != nil {
		add("round", *p.Round)
	}
	if p.Length != nil {
		add("length", *p.Length)
	}
	if p.HeadHundreds != nil {
		add("head_hundreds", *p.HeadHundreds)
	}
	if p.Head789 != nil {
		add("head_789", *p.Head789)
	}
	if p.Head56 != nil {
		add("head_56", *p.Head56)
	}
	if p.Head4 != nil {
		add("head_4", *p.Head4)
	}
	if p.Head3 != nil {
		add("head_3", *p.Head3)
	}
	if p.Note != nil {
		add("note", *p.Note)
	}
	return sets, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (model.File, error) {
	var file model.File
	var updated string
	if err := row.Scan(&file.ID, &file.Name, &file.Note, &updated); err != nil {
		return model.File{}, err
	}
	parsed, err := time.Parse(timeLayout, updated)
	if err != nil {
		return model.File{}, err
	}
	file.UpdatedAt = parsed
	return file, nil
}
