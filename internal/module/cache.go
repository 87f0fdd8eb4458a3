package module

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"
)

// Cache is a small on-disk compiled-module cache keyed by import path,
// whose entries are valid only for a matching content hash. One table,
// guarded by a single mutex around the DB handle. The loader and the
// compiler pipeline do not call it; whoever stores a blob fetches it.
type Cache struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenCache opens (creating if needed) the sqlite file at path and
// ensures its one table exists.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	const ddl = `CREATE TABLE IF NOT EXISTS modules (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		blob BLOB NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached blob for path if its stored hash matches hash
// (a content change invalidates the entry implicitly: the caller just
// gets a miss and recompiles).
func (c *Cache) Get(path, hash string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var storedHash string
	var blob []byte
	row := c.db.QueryRow(`SELECT hash, blob FROM modules WHERE path = ?`, path)
	if err := row.Scan(&storedHash, &blob); err != nil {
		return nil, false
	}
	if storedHash != hash {
		return nil, false
	}
	return blob, true
}

// Put stores (or replaces) the cached blob for path.
func (c *Cache) Put(path, hash string, blob []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT INTO modules(path, hash, blob) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, blob = excluded.blob`,
		path, hash, blob,
	)
	return err
}
