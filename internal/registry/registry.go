// Package registry is the process-wide, write-once-per-cache,
// read-many store of each named cache's configuration. It is read on
// every cache operation, so Get/GetField must be O(1) and lock-free
// after publication — backed by sync.Map rather than a mutex-guarded
// plain map, per the source's "persistent key-value term store"
// design note.
package registry

import (
	"fmt"
	"sync"

	"github.com/javi11/filecache/internal/ccfg"
	"github.com/javi11/filecache/internal/cerrors"
)

var store sync.Map // name (string) -> ccfg.Config

// Put publishes cfg under cfg.Cache, replacing any prior config for
// the same name.
func Put(cfg ccfg.Config) {
	store.Store(cfg.Cache, cfg)
}

// Get returns the whole config for name.
func Get(name string) (ccfg.Config, error) {
	v, ok := store.Load(name)
	if !ok {
		return ccfg.Config{}, fmt.Errorf("%w: %s", cerrors.ErrUnknownCache, name)
	}
	return v.(ccfg.Config), nil
}

// GetField returns one field of name's config.
func GetField(name, key string) (any, error) {
	cfg, err := Get(name)
	if err != nil {
		return nil, err
	}
	val, ok := cfg.Field(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrUnknownConfigKey, key)
	}
	return val, nil
}

// Delete removes name's published config, used on cache shutdown.
func Delete(name string) {
	store.Delete(name)
}
