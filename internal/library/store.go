package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediashelf/internal/config"
	"mediashelf/internal/content"
	"mediashelf/internal/services"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 50 * time.Millisecond
	defaultLockWait         = 2 * time.Second
)

// Store manages library persistence backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	lock     *flock.Flock
	lockWait time.Duration
	now      func() time.Time
}

// Open initializes or connects to the configured library database.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("library: config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Library.DBPath)
}

// OpenPath opens the database at dbPath and applies migrations.
func OpenPath(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("library: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:       db,
		path:     dbPath,
		lock:     flock.New(dbPath + ".lock"),
		lockWait: defaultLockWait,
		now:      time.Now,
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Commit files records under subjectID in one transaction and returns how many
// rows were written. Records whose provider id is already filed for the
// subject are skipped. Any failure rolls back the whole batch and is marked
// services.ErrCommit.
func (s *Store) Commit(ctx context.Context, subjectID, originURL string, records []Record) (int, error) {
	ctx = ensureContext(ctx)
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return 0, services.Wrap(services.ErrCommit, "library", "commit", "subject id required", nil)
	}
	if len(records) == 0 {
		return 0, nil
	}
	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return 0, services.Wrap(services.ErrCommit, "library", "commit", fmt.Sprintf("record %d", i+1), err)
		}
	}

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var saved int
	err = retryOnBusy(ctx, func() error {
		saved = 0
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin commit tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO library_entries (
            id, subject_id, item_ref, content_type, title, original_title, creator,
            review, rating, status, source_url, origin_url, external_id,
            external_source, cover_image_url, metadata_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(subject_id, external_source, external_id) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		createdAt := s.now().UTC().Format(time.RFC3339Nano)
		for _, rec := range records {
			metadataJSON, err := encodeMetadata(rec.Metadata)
			if err != nil {
				return err
			}
			status := rec.Status
			if status == "" {
				status = content.DefaultStatus
			}
			res, err := stmt.ExecContext(ctx,
				uuid.NewString(),
				subjectID,
				nullableString(rec.ItemRef),
				string(rec.Type),
				rec.Title,
				nullableString(rec.OriginalTitle),
				nullableString(rec.Creator),
				nullableString(rec.Review),
				nullableFloat(rec.Rating),
				string(status),
				nullableString(rec.SourceURL),
				nullableString(originURL),
				rec.ExternalID,
				rec.ExternalSource,
				nullableString(rec.CoverImageURL),
				metadataJSON,
				createdAt,
			)
			if err != nil {
				return fmt.Errorf("insert %q: %w", rec.Title, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				saved += int(n)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrCommit, "library", "commit", "write records", err)
	}
	return saved, nil
}

// List returns the entries filed under subjectID, oldest first.
func (s *Store) List(ctx context.Context, subjectID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT
        id, subject_id, item_ref, content_type, title, original_title, creator,
        review, rating, status, source_url, origin_url, external_id,
        external_source, cover_image_url, metadata_json, created_at
        FROM library_entries WHERE subject_id = ? ORDER BY created_at, rowid`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries filed under subjectID.
func (s *Store) Count(ctx context.Context, subjectID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM library_entries WHERE subject_id = ?", subjectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

func (s *Store) acquireLock(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	ok, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil || !ok {
		return nil, services.Wrap(services.ErrBusy, "library", "commit", "another process is writing the library", err)
	}
	return func() { _ = s.lock.Unlock() }, nil
}

func validateRecord(rec Record) error {
	switch {
	case !rec.Type.Valid():
		return fmt.Errorf("unsupported content type %q", rec.Type)
	case strings.TrimSpace(rec.Title) == "":
		return errors.New("title required")
	case strings.TrimSpace(rec.ExternalID) == "" || strings.TrimSpace(rec.ExternalSource) == "":
		return errors.New("external match required")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry                                              Entry
		itemRef, originalTitle, creator, review, sourceURL sql.NullString
		originURL, coverURL, metadataJSON                  sql.NullString
		rating                                             sql.NullFloat64
		contentType, status, createdAt                     string
	)
	if err := row.Scan(
		&entry.ID, &entry.SubjectID, &itemRef, &contentType, &entry.Title, &originalTitle, &creator,
		&review, &rating, &status, &sourceURL, &originURL, &entry.ExternalID,
		&entry.ExternalSource, &coverURL, &metadataJSON, &createdAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	entry.ItemRef = itemRef.String
	entry.Type = content.Type(contentType)
	entry.OriginalTitle = originalTitle.String
	entry.Creator = creator.String
	entry.Review = review.String
	if rating.Valid {
		value := rating.Float64
		entry.Rating = &value
	}
	entry.Status = content.Status(status)
	entry.SourceURL = sourceURL.String
	entry.OriginURL = originURL.String
	entry.CoverImageURL = coverURL.String
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &entry.Metadata); err != nil {
			return Entry{}, fmt.Errorf("decode metadata for %s: %w", entry.ID, err)
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		entry.CreatedAt = ts
	}
	return entry, nil
}

func encodeMetadata(metadata map[string]any) (any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
