// Package owner mints owner tokens for temp files and answers the
// Temp Cleaner's liveness question: is the producer that created this
// temp file still around?
//
// A token is a (pid, start_epoch, monotonic_seq) triple: the process
// id and boot time pin it to one process instance, and the sequence
// number disambiguates concurrent writers within that instance. The
// liveness oracle is a membership test against a set of tokens minted
// by *this* process — tokens from an earlier process instance are
// absent from that set and are therefore treated as dead, the
// conservative choice the design allows (see DESIGN.md, "Open Question
// decisions").
package owner

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var processStartEpoch = time.Now().UnixNano()

// Token identifies one producer within this process.
type Token struct {
	PID        int
	StartEpoch int64
	Seq        uint64
}

// String encodes the token for use inside a temp filename. It must
// never contain the path-encoder separator.
func (t Token) String() string {
	return fmt.Sprintf("%d-%d-%d", t.PID, t.StartEpoch, t.Seq)
}

// Parse decodes a token previously produced by String.
func Parse(s string) (Token, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Token{}, fmt.Errorf("owner: bad token %q", s)
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return Token{}, fmt.Errorf("owner: bad pid in token %q: %w", s, err)
	}
	epoch, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("owner: bad epoch in token %q: %w", s, err)
	}
	seq, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("owner: bad seq in token %q: %w", s, err)
	}
	return Token{PID: pid, StartEpoch: epoch, Seq: seq}, nil
}

// Registry tracks which tokens minted by this process currently have
// an in-flight producer. It is the liveness oracle the Temp Cleaner
// queries; it is scoped per cache and cleared on cache shutdown.
type Registry struct {
	seq atomic.Uint64
	live sync.Map // Token -> struct{}
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Mint allocates a fresh token and marks it live. Callers must Release
// it once the write that owns it has committed, rolled back, or
// failed — every exit path of the Writer Pipeline's put does this in
// a defer.
func (r *Registry) Mint() Token {
	t := Token{PID: os.Getpid(), StartEpoch: processStartEpoch, Seq: r.seq.Add(1)}
	r.live.Store(t, struct{}{})
	return t
}

// Release marks a token no longer live.
func (r *Registry) Release(t Token) {
	r.live.Delete(t)
}

// IsAlive reports whether token was minted by this process and has an
// in-flight producer. Tokens from a different process (different pid
// or start epoch) are always reported dead.
func (r *Registry) IsAlive(token string) bool {
	t, err := Parse(token)
	if err != nil {
		return false
	}
	if t.PID != os.Getpid() || t.StartEpoch != processStartEpoch {
		return false
	}
	_, ok := r.live.Load(t)
	return ok
}

// Clear drops every tracked token, used on cache shutdown.
func (r *Registry) Clear() {
	r.live.Range(func(key, _ any) bool {
		r.live.Delete(key)
		return true
	})
}
