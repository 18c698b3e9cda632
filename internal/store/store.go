package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketDetails = []byte("details")
	bucketGenres  = []byte("genres")
	bucketProbes  = []byte("probes")

	allBuckets = [][]byte{bucketDetails, bucketGenres, bucketProbes}
)

// entry stamps a cached value with its write time
type entry struct {
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// CatalogStore implements domain.Store using BoltDB.
type CatalogStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	detailTTL  time.Duration // details and genres; 0 never expires
	verdictTTL time.Duration // poster probe verdicts; 0 never expires
	now        func() time.Time
}

// NewCatalogStore opens (or creates) the cache for one API origin under
// baseCacheDir. An empty baseCacheDir keeps everything in memory.
func NewCatalogStore(baseCacheDir, apiURL string, detailTTL, verdictTTL time.Duration) (*CatalogStore, error) {
	s := &CatalogStore{
		cache:      make(map[string][]byte),
		detailTTL:  detailTTL,
		verdictTTL: verdictTTL,
		now:        time.Now,
	}
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	dir := baseCacheDir
	if apiURL != "" {
		dir = filepath.Join(baseCacheDir, hashAPIURL(apiURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// hashAPIURL keeps caches of different catalog origins apart
func hashAPIURL(apiURL string) string {
	normalized := strings.TrimRight(strings.ToLower(apiURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CatalogStore) get(bucket []byte, key string, ttl time.Duration, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	data, ok := s.cache[cacheKey]
	s.mu.RUnlock()

	if !ok {
		if s.db == nil {
			return false
		}
		s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b == nil {
				return nil
			}
			if v := b.Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if data == nil {
			return false
		}

		// Promote to memory cache
		s.mu.Lock()
		s.cache[cacheKey] = data
		s.mu.Unlock()
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.delete(bucket, key)
		return false
	}
	if ttl > 0 && s.now().Sub(e.SavedAt) > ttl {
		s.delete(bucket, key)
		return false
	}
	return json.Unmarshal(e.Data, dest) == nil
}

func (s *CatalogStore) set(bucket []byte, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{SavedAt: s.now(), Data: raw})
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *CatalogStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Movie details ===

func (s *CatalogStore) GetMovie(id string) (*domain.MovieDetail, bool) {
	var movie domain.MovieDetail
	if !s.get(bucketDetails, id, s.detailTTL, &movie) {
		return nil, false
	}
	return &movie, true
}

func (s *CatalogStore) SaveMovie(movie *domain.MovieDetail) error {
	if movie == nil || movie.ID == "" {
		return fmt.Errorf("cannot cache a movie without an id")
	}
	return s.set(bucketDetails, movie.ID, movie)
}

// === Genres ===

func (s *CatalogStore) GetGenres() ([]domain.Genre, bool) {
	var genres []domain.Genre
	ok := s.get(bucketGenres, "list", s.detailTTL, &genres)
	return genres, ok
}

func (s *CatalogStore) SaveGenres(genres []domain.Genre) error {
	return s.set(bucketGenres, "list", genres)
}

// === Poster probe verdicts ===

func (s *CatalogStore) GetVerdict(url string) (bool, bool) {
	var loadable bool
	ok := s.get(bucketProbes, url, s.verdictTTL, &loadable)
	return loadable, ok
}

func (s *CatalogStore) SaveVerdict(url string, loadable bool) error {
	return s.set(bucketProbes, url, loadable)
}

// === Invalidation ===

func (s *CatalogStore) InvalidateMovie(id string) {
	s.delete(bucketDetails, id)
}

func (s *CatalogStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

var _ domain.Store = (*CatalogStore)(nil)
