// Package ccfg holds the resolved, validated configuration for a
// single named cache. It is deliberately free of dependencies on the
// registry, store or cleaner packages so all of them can depend on it
// without import cycles.
package ccfg

import (
	"fmt"
	"time"

	"github.com/javi11/filecache/internal/namespace"
)

// UnknownFilesPolicy controls what a cleaner does with a file in a
// cache directory whose basename does not parse.
type UnknownFilesPolicy int

const (
	// UnknownFilesKeep leaves unparseable files alone.
	UnknownFilesKeep UnknownFilesPolicy = iota
	// UnknownFilesRemove unlinks unparseable files (errors logged).
	UnknownFilesRemove
)

// Config is the validated, process-published configuration of one
// named cache. It is constructed from user-supplied Options by
// Validate and is immutable once published to the registry.
type Config struct {
	Cache string
	Dir   string
	// TempDir is the root of the temp staging tree. It must resolve to
	// the same filesystem as Dir, since commit relies on an atomic
	// rename between them.
	TempDir string

	TTL time.Duration

	Namespace     []namespace.Part
	TempNamespace []namespace.Part

	StaleCleanInterval time.Duration
	TempCleanInterval  time.Duration

	UnknownFiles UnknownFilesPolicy
	Verbose      bool
}

// Options is the user-facing, pre-validation form of Config. Cache,
// Dir and TempDir are required; every other field is optional and
// defaults are applied by Validate.
type Options struct {
	Cache string
	Dir   string
	TempDir string

	TTL time.Duration

	Namespace     []namespace.Part
	TempNamespace []namespace.Part

	StaleCleanInterval time.Duration
	TempCleanInterval  time.Duration

	UnknownFiles UnknownFilesPolicy
	Verbose      bool
}

const (
	defaultTTL                = time.Hour
	defaultStaleCleanInterval = 5 * time.Minute
	defaultTempCleanInterval  = time.Minute
)

// Validate applies defaults and checks required fields, returning a
// published-ready Config.
func Validate(opts Options) (Config, error) {
	if opts.Cache == "" {
		return Config{}, fmt.Errorf("ccfg: cache name is required")
	}
	for _, r := range opts.Cache {
		if r == '/' {
			return Config{}, fmt.Errorf("ccfg: cache name %q must not contain '/'", opts.Cache)
		}
	}
	if opts.Dir == "" {
		return Config{}, fmt.Errorf("ccfg: dir is required")
	}
	if opts.TempDir == "" {
		return Config{}, fmt.Errorf("ccfg: temp_dir is required")
	}

	cfg := Config{
		Cache:         opts.Cache,
		Dir:           opts.Dir,
		TempDir:       opts.TempDir,
		Namespace:     opts.Namespace,
		TempNamespace: opts.TempNamespace,
		UnknownFiles:  opts.UnknownFiles,
		Verbose:       opts.Verbose,
	}

	cfg.TTL = opts.TTL
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	cfg.StaleCleanInterval = opts.StaleCleanInterval
	if cfg.StaleCleanInterval <= 0 {
		cfg.StaleCleanInterval = defaultStaleCleanInterval
	}
	cfg.TempCleanInterval = opts.TempCleanInterval
	if cfg.TempCleanInterval <= 0 {
		cfg.TempCleanInterval = defaultTempCleanInterval
	}

	return cfg, nil
}

// Field returns the value of a single named config field, mirroring
// the source's get(name, key) accessor. Unknown keys are the caller's
// responsibility to reject (see internal/registry.GetField).
func (c Config) Field(key string) (any, bool) {
	switch key {
	case "cache":
		return c.Cache, true
	case "dir":
		return c.Dir, true
	case "temp_dir":
		return c.TempDir, true
	case "ttl":
		return c.TTL, true
	case "stale_clean_interval":
		return c.StaleCleanInterval, true
	case "temp_clean_interval":
		return c.TempCleanInterval, true
	case "unknown_files":
		return c.UnknownFiles, true
	case "verbose":
		return c.Verbose, true
	default:
		return nil, false
	}
}
