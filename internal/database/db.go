package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/litfeed/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "litfeed.db"

// DB provides SQLite-based storage for resolved documents and session
// history. It implements resolver.Cache and feed.Recorder.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// logger reports cache errors, which Get and Put cannot return.
	logger *slog.Logger
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool

	// Logger receives cache errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents creating a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &DB{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := d.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the path of the database file.
func (d *DB) Path() string {
	return d.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (d *DB) createTables() error {
	schema := `
	-- Resolved documents keyed by the identifier they were requested under
	CREATE TABLE IF NOT EXISTS documents (
		language TEXT NOT NULL,
		cache_id TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		genre TEXT NOT NULL,
		body TEXT NOT NULL,
		source TEXT NOT NULL,
		identifier TEXT NOT NULL,
		url TEXT,
		fingerprint TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY(language, cache_id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_fingerprint ON documents(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_documents_timestamp ON documents(timestamp);

	-- Shown records one presented document per session
	CREATE TABLE IF NOT EXISTS shown (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		source TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		genre TEXT NOT NULL,
		language TEXT NOT NULL,
		url TEXT,
		fingerprint TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session_id, source, title)
	);

	CREATE INDEX IF NOT EXISTS idx_shown_session ON shown(session_id);
	CREATE INDEX IF NOT EXISTS idx_shown_timestamp ON shown(timestamp);
	`

	_, err := d.db.ExecContext(context.Background(), schema)
	return err
}

// PutDocument stores doc under key, replacing any previous entry.
func (d *DB) PutDocument(ctx context.Context, key model.CacheKey, doc *model.Document) error {
	query := `
	INSERT INTO documents (language, cache_id, title, author, genre, body, source, identifier, url, fingerprint)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(language, cache_id) DO UPDATE SET
		title = excluded.title,
		author = excluded.author,
		genre = excluded.genre,
		body = excluded.body,
		source = excluded.source,
		identifier = excluded.identifier,
		url = excluded.url,
		fingerprint = excluded.fingerprint,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := d.db.ExecContext(ctx, query,
		key.Language,
		key.Identifier,
		doc.Title,
		doc.Author,
		doc.GenreTag,
		doc.Body,
		string(doc.Source),
		doc.Identifier,
		doc.URL,
		doc.Fingerprint(),
	)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

// GetDocument returns the document stored under key, or nil when absent.
func (d *DB) GetDocument(ctx context.Context, key model.CacheKey) (*model.Document, error) {
	query := `
	SELECT title, author, genre, body, source, identifier, url
	FROM documents
	WHERE language = ? AND cache_id = ?
	`

	doc := &model.Document{Language: key.Language}
	var source string
	var url sql.NullString
	err := d.db.QueryRowContext(ctx, query, key.Language, key.Identifier).Scan(
		&doc.Title,
		&doc.Author,
		&doc.GenreTag,
		&doc.Body,
		&source,
		&doc.Identifier,
		&url,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.Source = model.Source(source)
	doc.URL = url.String
	return doc, nil
}

// Get implements resolver.Cache. Errors are logged and reported as a miss.
func (d *DB) Get(ctx context.Context, key model.CacheKey) (*model.Document, bool) {
	doc, err := d.GetDocument(ctx, key)
	if err != nil {
		d.logger.Warn("document cache read failed", "key", key.String(), "error", err)
		return nil, false
	}
	return doc, doc != nil
}

// Put implements resolver.Cache. Errors are logged.
func (d *DB) Put(ctx context.Context, key model.CacheKey, doc *model.Document) {
	if err := d.PutDocument(ctx, key, doc); err != nil {
		d.logger.Warn("document cache write failed", "key", key.String(), "error", err)
	}
}

// CountDocuments returns the number of cached documents.
func (d *DB) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// Prune deletes cached documents stored more than olderThan ago and returns
// how many were removed.
func (d *DB) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(olderThan.Seconds()))

	result, err := d.db.ExecContext(ctx,
		"DELETE FROM documents WHERE timestamp <= datetime('now', ?)", modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to prune documents: %w", err)
	}
	return result.RowsAffected()
}

// Record implements feed.Recorder. Recording the same document twice in one
// session is a no-op.
func (d *DB) Record(ctx context.Context, sessionID string, doc *model.Document) error {
	query := `
	INSERT INTO shown (session_id, source, title, author, genre, language, url, fingerprint)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, source, title) DO NOTHING
	`

	_, err := d.db.ExecContext(ctx, query,
		sessionID,
		string(doc.Source),
		doc.Title,
		doc.Author,
		doc.GenreTag,
		doc.Language,
		doc.URL,
		doc.Fingerprint(),
	)
	if err != nil {
		return fmt.Errorf("failed to record shown document: %w", err)
	}
	return nil
}

// ShownRecord is one row of session history.
type ShownRecord struct {
	ID        int64        `json:"id"`
	SessionID string       `json:"session_id"`
	Source    model.Source `json:"source"`
	Title     string       `json:"title"`
	Author    string       `json:"author"`
	Genre     string       `json:"genre"`
	Language  string       `json:"language"`
	URL       string       `json:"url,omitempty"`
	// Fingerprint is the SHA3-256 digest of the shown text.
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryFilter restricts History results. Zero values match everything.
type HistoryFilter struct {
	// SessionID limits results to one session.
	SessionID string

	// Language limits results to one language.
	Language string

	// Limit caps the number of rows returned.
	Limit int
}

// History returns shown records, most recent first.
func (d *DB) History(ctx context.Context, f HistoryFilter) ([]ShownRecord, error) {
	query := `
	SELECT id, session_id, source, title, author, genre, language, url, fingerprint, timestamp
	FROM shown
	WHERE 1=1
	`
	args := make([]any, 0, 3)

	if f.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, f.SessionID)
	}
	if f.Language != "" {
		query += " AND language = ?"
		args = append(args, f.Language)
	}

	query += " ORDER BY timestamp DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var results []ShownRecord
	for rows.Next() {
		var rec ShownRecord
		var source, timestamp string
		var url sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&source,
			&rec.Title,
			&rec.Author,
			&rec.Genre,
			&rec.Language,
			&url,
			&rec.Fingerprint,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		rec.Source = model.Source(source)
		rec.URL = url.String
		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// SessionSummary describes one feed session.
type SessionSummary struct {
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
	Shown   int       `json:"shown"`
}

// Sessions returns all sessions, most recent first.
func (d *DB) Sessions(ctx context.Context) ([]SessionSummary, error) {
	query := `
	SELECT session_id, MIN(timestamp), COUNT(*)
	FROM shown
	GROUP BY session_id
	ORDER BY MIN(timestamp) DESC, MIN(id) DESC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var started string
		if err := rows.Scan(&s.ID, &started, &s.Shown); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Started = parseTimestamp(started)
		results = append(results, s)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp tries each of timestampFormats and returns the zero time
// when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
