// Package storage keeps a bbolt-backed cache of fetched pages for the
// lifetime of one session, so a user-triggered reload can revalidate with
// conditional requests instead of downloading every article again.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

var pagesBucket = []byte("pages")

// ErrNotFound is returned when a URL has no cached page.
var ErrNotFound = errors.New("page not found")

type Store struct {
	db        *bolt.DB
	path      string
	ephemeral bool
}

// NewStore opens the cache at dbPath. An empty dbPath creates a temporary
// file that Close removes.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	ephemeral := false
	if dbPath == "" {
		f, err := os.CreateTemp("", "shelf-cache-*.db")
		if err != nil {
			return nil, fmt.Errorf("creating cache file: %w", err)
		}
		dbPath = f.Name()
		f.Close()
		// bbolt initializes an empty file itself
		os.Remove(dbPath)
		ephemeral = true
	}
	if timeout <= 0 {
		timeout = 1 * time.Second
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(pagesBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, path: dbPath, ephemeral: ephemeral}, nil
}

// Path returns the file backing the cache.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.ephemeral {
		if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}

func (s *Store) SavePage(page *Page) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket)
		data, err := json.Marshal(page)
		if err != nil {
			return err
		}
		return b.Put([]byte(page.URL), data)
	})
}

func (s *Store) GetPage(url string) (*Page, error) {
	var page Page
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(pagesBucket).Get([]byte(url))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &page)
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// DeletePage evicts url. Deleting a missing key is not an error.
func (s *Store) DeletePage(url string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Delete([]byte(url))
	})
}

// PageCount returns the number of cached pages.
func (s *Store) PageCount() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(pagesBucket).Stats().KeyN
		return nil
	})
	return count, err
}
