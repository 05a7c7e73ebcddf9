package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmtag/internal/model"
)

const currentSchemaVersion = 1

// Enrichment is a cached page summary and tag for one URL.
type Enrichment struct {
	URL       string
	Content   string
	Tag       string
	UpdatedAt time.Time
}

// Cache stores successful enrichments in a SQLite database so repeated
// analyze runs don't refetch and retag the same pages.
type Cache struct {
	db   *sql.DB
	path string
	ttl  time.Duration
}

// NewCache opens (or creates) the cache database at path. Entries older than
// ttl are treated as missing; zero keeps entries forever.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	c := &Cache{db: db, path: path, ttl: ttl}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// migrate runs database migrations.
func (c *Cache) migrate() error {
	var version int
	err := c.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < currentSchemaVersion {
		if err := c.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (c *Cache) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS enrichments (
			url TEXT PRIMARY KEY NOT NULL,
			content TEXT NOT NULL,
			tag TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached enrichment for url, or nil when absent or expired.
func (c *Cache) Get(url string) (*Enrichment, error) {
	var e Enrichment
	var updatedAt string

	err := c.db.QueryRow(`
		SELECT url, content, tag, updated_at
		FROM enrichments
		WHERE url = ?
	`, url).Scan(&e.URL, &e.Content, &e.Tag, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if c.ttl > 0 && time.Since(e.UpdatedAt) > c.ttl {
		return nil, nil
	}
	return &e, nil
}

// Put stores a successful enrichment. Failed ones (sentinel tag) are not
// cached so the next run retries them.
func (c *Cache) Put(e Enrichment) error {
	if e.Tag == "" || e.Tag == model.SentinelTag {
		return nil
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}

	_, err := c.db.Exec(`
		INSERT INTO enrichments (url, content, tag, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			content = excluded.content,
			tag = excluded.tag,
			updated_at = excluded.updated_at
	`, e.URL, e.Content, e.Tag, e.UpdatedAt.Format(time.RFC3339))
	return err
}

// DefaultCachePath returns the default cache path: ~/.config/bmtag/cache.db
func DefaultCachePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmtag", "cache.db"), nil
}
