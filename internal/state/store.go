// Package state persists application state that must survive restarts:
// the suppressed-tags set and simple UI preferences.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSuppressed = []byte("suppressed_tags")
	bucketPrefs      = []byte("preferences")
)

const prefsKey = "ui"

// Preferences holds simple UI settings surfaced by the core to its environment.
type Preferences struct {
	GridDensity   int `json:"grid_density"`
	ThumbnailSize int `json:"thumbnail_size"`
}

// DefaultPreferences are used when nothing has been saved yet.
func DefaultPreferences() Preferences {
	return Preferences{GridDensity: 4, ThumbnailSize: 240}
}

// Store is a bbolt-backed state store. The suppressed-tags set is mirrored
// in memory so reads on the hot path never touch disk.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex

	suppressed map[string]struct{}
}

// Open opens (or creates) the state database and loads the suppressed set.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open state db: %w", err)
	}

	s := &Store{db: db, suppressed: make(map[string]struct{})}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSuppressed, bucketPrefs} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create buckets: %w", err)
	}

	err = db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSuppressed).ForEach(func(k, _ []byte) error {
			s.suppressed[string(k)] = struct{}{}
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not load suppressed tags: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsSuppressed reports whether a tag has been deleted by the user and should
// be hidden from listings. Comparison is case-insensitive.
func (s *Store) IsSuppressed(tag string) bool {
	tag = strings.ToLower(tag)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.suppressed[tag]
	return ok
}

// Suppressed returns a copy of the suppressed set.
func (s *Store) Suppressed() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.suppressed))
	for k := range s.suppressed {
		out[k] = struct{}{}
	}
	return out
}

// Suppress marks a tag as deleted. The entry never expires on its own.
func (s *Store) Suppress(tag string) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil
	}

	s.mu.Lock()
	s.suppressed[tag] = struct{}{}
	s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSuppressed).Put([]byte(tag), []byte{1})
	})
	if err != nil {
		return fmt.Errorf("could not persist suppressed tag: %w", err)
	}
	return nil
}

// Unsuppress removes a tag from the suppressed set, letting it surface in
// listings again.
func (s *Store) Unsuppress(tag string) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil
	}

	s.mu.Lock()
	delete(s.suppressed, tag)
	s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSuppressed).Delete([]byte(tag))
	})
	if err != nil {
		return fmt.Errorf("could not remove suppressed tag: %w", err)
	}
	return nil
}

// LoadPrefs returns the saved UI preferences, or defaults if none were saved.
func (s *Store) LoadPrefs() Preferences {
	prefs := DefaultPreferences()
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPrefs).Get([]byte(prefsKey)); v != nil {
			// Ignore unmarshal errors and keep defaults.
			json.Unmarshal(v, &prefs)
		}
		return nil
	})
	return prefs
}

// SavePrefs persists the UI preferences.
func (s *Store) SavePrefs(prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("could not marshal preferences: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPrefs).Put([]byte(prefsKey), data)
	})
	if err != nil {
		return fmt.Errorf("could not persist preferences: %w", err)
	}
	return nil
}
