package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/petroops-lab/derrick/pkg/cache/badgerstore"
	cachemem "github.com/petroops-lab/derrick/pkg/cache/memory"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
)

// Cache holds CLI flags for the query cache backend
type Cache struct {
	backend string
	path    string
	ttl     time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Query cache backend (badger, memory or none)",
			Value:       "badger",
			Sources:     cli.EnvVars("DERRICK_CACHE_BACKEND"),
			Destination: &c.backend,
		},
		&cli.StringFlag{
			Name:        "cache-path",
			Usage:       "Badger data directory (empty for in-memory badger)",
			Sources:     cli.EnvVars("DERRICK_CACHE_PATH"),
			Destination: &c.path,
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "TTL for cached query results",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("DERRICK_CACHE_TTL"),
			Destination: &c.ttl,
		},
	}
}

// TTL returns the configured entry TTL
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Configure initializes the cache store, or returns nil when caching is
// disabled. The caller owns Close().
func (c *Cache) Configure() (interfaces.CacheStore, error) {
	switch c.backend {
	case "badger":
		store, err := badgerstore.New(badgerstore.Config{
			Path:     c.path,
			InMemory: c.path == "",
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize badger cache")
		}
		logging.Default().Info("Using badger query cache",
			"path", c.path, "in_memory", c.path == "", "ttl", c.ttl)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory query cache", "ttl", c.ttl)
		return cachemem.New(), nil

	case "none":
		logging.Default().Info("Query cache disabled")
		return nil, nil

	default:
		return nil, goerr.New("invalid cache backend", goerr.V("backend", c.backend))
	}
}
