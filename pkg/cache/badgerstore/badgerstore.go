// Package badgerstore implements the cache store on BadgerDB, an embedded
// key/value store with native per-key TTL and prefix iteration.
package badgerstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
)

const gcDiscardRatio = 0.5

type Store struct {
	db     *badger.DB
	stopGC chan struct{}
}

var _ interfaces.CacheStore = &Store{}

type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory disables disk persistence, used for tests and development
	InMemory bool

	// GCInterval is how often to run value log garbage collection.
	// Zero disables GC (always disabled in memory mode).
	GCInterval time.Duration
}

func New(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger cache", goerr.V("path", cfg.Path))
	}

	s := &Store{
		db:     db,
		stopGC: make(chan struct{}),
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		go s.runGC(cfg.GCInterval)
	}

	return s, nil
}

func (s *Store) runGC(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing to collect
			if err := s.db.RunValueLogGC(gcDiscardRatio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logging.Default().Warn("badger value log GC failed", "error", err.Error())
			}
		}
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, goerr.Wrap(err, "failed to get cache entry", goerr.V("key", key))
	}

	return value, nil
}

func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to set cache entry", goerr.V("key", key))
	}

	return nil
}

func (s *Store) KeysMatching(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if item.IsDeletedOrExpired() {
				continue
			}
			key := string(item.KeyCopy(nil))
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan cache keys", goerr.V("prefix", prefix))
	}

	return keys, nil
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete cache entries")
	}

	return nil
}

func (s *Store) Close() error {
	close(s.stopGC)
	return s.db.Close()
}
