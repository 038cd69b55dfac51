package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/materials-admin/tokenstore"
)

var _ tokenstore.Store = (*Store)(nil)

// Store keeps the token in process memory.
type Store struct {
	token string
	lock  sync.RWMutex
}

func New() *Store {
	return &Store{}
}

// NewWithToken returns a store already holding token.
func NewWithToken(token string) *Store {
	return &Store{token: token}
}

func (s *Store) Get(_ context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.token == "" {
		return "", tokenstore.ErrNoToken
	}
	return s.token, nil
}

func (s *Store) Set(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = token
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = ""
	return nil
}

// Bucket hands out one Store per key, for hosts that run many sessions.
type Bucket struct {
	stores map[string]*Store
	lock   sync.Mutex
}

func NewBucket() *Bucket {
	return &Bucket{stores: make(map[string]*Store)}
}

// For returns the store for key, creating it on first use.
func (b *Bucket) For(key string) tokenstore.Store {
	b.lock.Lock()
	defer b.lock.Unlock()
	s, ok := b.stores[key]
	if !ok {
		s = New()
		b.stores[key] = s
	}
	return s
}

// Forget drops the store for key.
func (b *Bucket) Forget(key string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	delete(b.stores, key)
}

// Len is the number of live stores.
func (b *Bucket) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.stores)
}
