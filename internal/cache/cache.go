// Package cache stores source API responses so repeated reconciliation runs
// do not hit the knowledge base and encyclopedia again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for a request URL within a namespace
// such as "wikidata" or "wikipedia"
func Key(namespace, url string) string {
	hash := sha256.Sum256([]byte(url))
	return "coasterscan:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: layered memory and disk when a
// directory is set, memory only otherwise, and Nop when disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Nop is a cache that stores nothing
type Nop struct{}

// Get always misses
func (Nop) Get(key string) ([]byte, bool) { return nil, false }

// Set discards the value
func (Nop) Set(key string, value []byte, ttl time.Duration) error { return nil }

// Delete does nothing
func (Nop) Delete(key string) error { return nil }

// Clear does nothing
func (Nop) Clear() error { return nil }
