// Package directory turns inbound share and lookup requests into registry operations.
package directory

import (
	"strings"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/filesoup/types"
)

const (
	// DefaultMaxPayloadLength bounds a magnet URI in bytes.
	DefaultMaxPayloadLength = 4096

	// MagnetPrefix is the shape every accepted payload must start with.
	MagnetPrefix = "magnet:?"
)

// Store is the part of the registry the directory needs.
type Store interface {
	Insert(id, payload string) types.Entry
	InsertIfAbsent(id, payload string) (types.Entry, bool)
	Get(id string) (types.Entry, bool)
	Len() int
}

// IDSource hands out new identifiers.
type IDSource interface {
	Next() string
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	// MaxPayloadLength is the largest accepted payload in bytes.
	MaxPayloadLength int

	// CollisionRetries is how many extra identifiers Create tries when the
	// generated one is taken. 0 keeps the plain overwrite-on-collision
	// behavior and never checks.
	CollisionRetries int

	// OnCollision, if set, is called with every identifier that was found taken.
	OnCollision func(id string)
}

// Service is the single entry point used by the HTTP and MCP surfaces.
type Service struct {
	store Store
	ids   IDSource
	opts  Options
}

// New returns a Service storing into store with identifiers from ids.
// A negative CollisionRetries is treated as 0.
func New(store Store, ids IDSource, opts Options) *Service {
	if opts.MaxPayloadLength <= 0 {
		opts.MaxPayloadLength = DefaultMaxPayloadLength
	}
	if opts.CollisionRetries < 0 {
		opts.CollisionRetries = 0
	}
	return &Service{store: store, ids: ids, opts: opts}
}

// ValidatePayload performs the superficial shape check done before insertion.
// It does not parse the URI.
func ValidatePayload(payload string, maxLen int) error {
	switch {
	case strings.TrimSpace(payload) == "":
		return errors.New(errors.CodeInvalidInput, "magnetUri is required")
	case len(payload) > maxLen:
		return errors.WithContextMap(
			errors.New(errors.CodeInvalidInput, "magnetUri is too long"),
			map[string]interface{}{"length": len(payload), "max": maxLen})
	case !strings.HasPrefix(payload, MagnetPrefix):
		return errors.Newf(errors.CodeInvalidInput, "magnetUri must start with %q", MagnetPrefix)
	}
	return nil
}

/*
Create validates payload, picks an identifier and stores the entry.

With CollisionRetries == 0 a generated identifier that is already taken
silently replaces the older entry. With CollisionRetries == k, up to k+1
identifiers are tried with InsertIfAbsent before falling back to overwrite.
*/
func (s *Service) Create(payload string) (types.Entry, error) {
	if err := ValidatePayload(payload, s.opts.MaxPayloadLength); err != nil {
		return types.Entry{}, err
	}

	id := s.ids.Next()
	if s.opts.CollisionRetries == 0 {
		return s.store.Insert(id, payload), nil
	}

	for attempt := 0; ; attempt++ {
		if ent, ok := s.store.InsertIfAbsent(id, payload); ok {
			return ent, nil
		}
		if s.opts.OnCollision != nil {
			s.opts.OnCollision(id)
		}
		if attempt == s.opts.CollisionRetries {
			break
		}
		id = s.ids.Next()
	}
	return s.store.Insert(id, payload), nil
}

// Lookup returns the entry for id and refreshes its idle clock.
func (s *Service) Lookup(id string) (types.Entry, bool) {
	return s.store.Get(id)
}

// Len returns the number of live entries.
func (s *Service) Len() int {
	return s.store.Len()
}

// NotFound builds the error the outer surfaces report for a missing id.
func NotFound(id string) error {
	return errors.WithContext(errors.New(errors.CodeNotFound, "file not found"), "id", id)
}
