// Package pathenc composes and parses the filename encoding used by
// the permanent and temp stores. A permanent file's basename is
//
//	perm-file-cache$<expires_at_ms>$<id>
//
// and a temp file's basename is
//
//	temp-file-cache$<owner_token>$<unique_token>$<id>
//
// No in-process index is kept; the filename alone carries expiration
// and identity, so parsing here is the only source of truth callers
// have about a file on disk.
package pathenc

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/javi11/filecache/internal/cerrors"
)

// Sep is the reserved separator. It must not occur inside a computed
// namespace fragment or owner/unique token; ids may contain it only
// because parsing below uses a bounded split.
const Sep = "$"

const (
	permPrefix = "perm-file-cache"
	tempPrefix = "temp-file-cache"
)

// permParts/tempParts bound the number of times SplitN splits the
// basename, so an id containing Sep is preserved whole as the
// trailing part instead of being chopped up.
const (
	permParts = 3
	tempParts = 4
)

// ParseError classifies a failure to parse a permanent or temp
// filename.
type ParseError struct {
	Kind     string // bad_format | bad_prefix | bad_timestamp | bad_owner
	Basename string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pathenc: %s: %s", e.Kind, e.Basename)
}

func newParseError(kind, basename string) error {
	return &ParseError{Kind: kind, Basename: basename}
}

// PermEntry is the result of parsing a permanent filename.
type PermEntry struct {
	ExpiresAtMs int64
	ID          string
}

// TempEntry is the result of parsing a temp filename.
type TempEntry struct {
	Owner  string
	Unique string
	ID     string
}

// PermPath composes the absolute path of a permanent file for id
// under dir, expiring at expiresAtMs.
func PermPath(dir, id string, expiresAtMs int64) string {
	basename := permPrefix + Sep + strconv.FormatInt(expiresAtMs, 10) + Sep + id
	return filepath.Join(dir, basename)
}

// TempPath composes the absolute path of a temp file for id under
// dir, owned by owner and tagged with a per-allocation unique token.
func TempPath(dir, id, owner, unique string) string {
	basename := tempPrefix + Sep + owner + Sep + unique + Sep + id
	return filepath.Join(dir, basename)
}

// PermWildcard returns a glob matching every permanent file for id
// under dir, or every permanent file in dir if id is empty.
func PermWildcard(dir, id string) string {
	if id == "" {
		return filepath.Join(dir, permPrefix+Sep+"*")
	}
	return filepath.Join(dir, permPrefix+Sep+"*"+Sep+escapeGlob(id))
}

// TempWildcard returns a glob matching every temp file under dir.
func TempWildcard(dir string) string {
	return filepath.Join(dir, tempPrefix+Sep+"*")
}

// ParsePerm parses a permanent file's basename.
func ParsePerm(basename string) (PermEntry, error) {
	parts := strings.SplitN(basename, Sep, permParts)
	if len(parts) != permParts {
		return PermEntry{}, newParseError("bad_format", basename)
	}
	if parts[0] != permPrefix {
		return PermEntry{}, newParseError("bad_prefix", basename)
	}
	expiresAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return PermEntry{}, newParseError("bad_timestamp", basename)
	}
	return PermEntry{ExpiresAtMs: expiresAt, ID: parts[2]}, nil
}

// ParseTemp parses a temp file's basename.
func ParseTemp(basename string) (TempEntry, error) {
	parts := strings.SplitN(basename, Sep, tempParts)
	if len(parts) != tempParts {
		return TempEntry{}, newParseError("bad_format", basename)
	}
	if parts[0] != tempPrefix {
		return TempEntry{}, newParseError("bad_prefix", basename)
	}
	if parts[1] == "" {
		return TempEntry{}, newParseError("bad_owner", basename)
	}
	return TempEntry{Owner: parts[1], Unique: parts[2], ID: parts[3]}, nil
}

// ValidateID reports whether id is acceptable as a cache key: non
// empty and free of the path separator. Ids may contain Sep; parsing
// tolerates it via the bounded split above, but callers should avoid
// it (see the SEP-in-id caveat in the package doc of cache).
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", cerrors.ErrBadID)
	}
	if strings.ContainsRune(id, '/') {
		return fmt.Errorf("%w: id must not contain '/'", cerrors.ErrBadID)
	}
	return nil
}

// escapeGlob escapes filepath.Match metacharacters in an encoded id,
// so a lookup glob matches the literal id rather than treating it as
// a pattern. Only PermWildcard's id goes through it: the dir argument
// of PermWildcard and TempWildcard, namespace fragment included, is
// joined into the glob unescaped.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '?', '[', ']', '{', '}', '*', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
