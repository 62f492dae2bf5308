/*
Package cache stores conversion results in a SQLite database so unchanged
images are not converted again.

Results are keyed by the SHA-1 of the input images together with the
conversion options.
*/
package cache

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/imgtogb"
	_ "github.com/mattn/go-sqlite3" // register driver
	"gopkg.in/yaml.v3"
)

// Cache is a SQLite backed store of conversion results.
type Cache struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens, creating if necessary, the cache database in file.
func Open(file string, logger *log.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, result BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	return &Cache{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key returns the cache key for converting the contents of the readers with
// opts.
func Key(opts imgtogb.Options, readers ...io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.WriteString(h, opts.String()); err != nil {
		return "", err
	}
	for _, r := range readers {
		// Separate the inputs so moving bytes between them changes the key
		if _, err := h.Write([]byte{0}); err != nil {
			return "", err
		}
		if _, err := io.Copy(h, r); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%X", h.Sum(nil)), nil
}

// FileKey is Key for named files. Empty names are skipped.
func FileKey(opts imgtogb.Options, files ...string) (string, error) {
	readers := make([]io.Reader, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		f, err := os.Open(file)
		if err != nil {
			return "", err
		}
		defer f.Close()
		readers = append(readers, f)
	}
	return Key(opts, readers...)
}

// Get returns the result stored under key, or nil if there is none.
func (c *Cache) Get(key string) (*imgtogb.Result, error) {
	var b []byte
	switch err := c.db.QueryRow("SELECT result FROM conversion WHERE sha1 = ?", key).Scan(&b); err {
	case sql.ErrNoRows:
		c.logger.Printf("Cache miss for %s\n", key)
		return nil, nil
	case nil:
		r := new(imgtogb.Result)
		if err := yaml.Unmarshal(b, r); err != nil {
			return nil, err
		}
		c.logger.Printf("Cache hit for %s\n", key)
		return r, nil
	default:
		return nil, err
	}
}

// Put stores r under key, replacing any existing result.
func (c *Cache) Put(key string, r *imgtogb.Result) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := c.db.Exec("INSERT OR REPLACE INTO conversion (sha1, result) VALUES (?, ?)", key, b); err != nil {
		return err
	}
	return nil
}

// Convert returns the cached result for converting file, and reference if
// set, with conv, converting and storing it on a miss.
func (c *Cache) Convert(conv *imgtogb.Converter, file, reference string) (*imgtogb.Result, error) {
	key, err := FileKey(conv.Options(), file, reference)
	if err != nil {
		return nil, err
	}

	r, err := c.Get(key)
	if err != nil || r != nil {
		return r, err
	}

	if r, err = conv.ConvertFile(file, reference); err != nil {
		return nil, err
	}

	if err := c.Put(key, r); err != nil {
		return nil, err
	}

	return r, nil
}
