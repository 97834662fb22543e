package relex

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/embedlex"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultExpiration      = 30 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// Store keeps open documents by URI. Documents nobody touched for the
// expiration are dropped.
type Store struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewStore(expiration, cleanupInterval time.Duration) *Store {
	return &Store{cache: gocache.New(expiration, cleanupInterval)}
}

func normalizeURI(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	// remove the file:/private prefix
	uri = strings.TrimPrefix(uri, "file:")
	return uri
}

// Open lexes text and stores it under uri, replacing any document there.
func (s *Store) Open(ctx context.Context, lexer *embedlex.Lexer, uri, text string) (*Document, error) {
	doc, err := NewDocument(ctx, lexer, normalizeURI(uri), text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.SetDefault(doc.URI, doc)
	return doc, nil
}

func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(normalizeURI(uri))
}

func (s *Store) get(key string) (*Document, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	doc, ok := v.(*Document)
	return doc, ok
}

// Update applies edits to the document at uri and records version.
func (s *Store) Update(ctx context.Context, uri string, version int32, edits ...Edit) ([]Result, error) {
	key := normalizeURI(uri)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.get(key)
	if !ok {
		return nil, errors.Errorf("document %s is not open", key)
	}
	if version != 0 && version <= doc.Version {
		zerolog.Ctx(ctx).Warn().Str("uri", key).Int32("version", version).Int32("current", doc.Version).Msg("ignoring stale update")
		return nil, nil
	}

	results, err := doc.Apply(ctx, edits...)
	if err != nil {
		return results, errors.Errorf("updating %s: %w", key, err)
	}
	if version != 0 {
		doc.Version = version
	}

	// touching the entry extends its lifetime
	s.cache.SetDefault(key, doc)
	return results, nil
}

func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(normalizeURI(uri))
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
