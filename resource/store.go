// Package resource mirrors one remote collection in memory.
//
// A Store keeps the list the server last returned and applies the server's
// answers to it: fetch replaces the list, add appends, update replaces by id
// and remove drops by id. A failed call leaves the list untouched, records a
// human readable message and returns the error to the caller.
package resource

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/materials-admin/apiclient"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Record is a server-owned item. Ids are assigned by the server only.
type Record interface {
	RecordID() int64
}

// Capability marks the optional operations an endpoint supports.
type Capability uint8

const (
	CanUpdate Capability = 1 << iota
	CanRemove
)

// Messages are shown when the server gives no message of its own.
type Messages struct {
	Fetch  string
	Add    string
	Update string
	Remove string
}

// Endpoint describes one remote collection.
type Endpoint struct {
	Name         string // e.g. "materials"
	Path         string // e.g. "/materials"
	Capabilities Capability
	Messages     Messages
}

// Can reports whether the endpoint supports c.
func (e Endpoint) Can(c Capability) bool {
	return e.Capabilities&c == c
}

func (e Endpoint) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", e.Path, id)
}

// State is a point-in-time copy of a store.
type State[T Record] struct {
	Items   []T
	Loading bool
	Error   string
}

type Option func(*options)

type options struct {
	logger zerolog.Logger
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Store is safe for concurrent use. Calls are not serialised: two concurrent
// FetchAll calls both hit the server and whichever finishes last wins.
type Store[T Record] struct {
	endpoint Endpoint
	api      apiclient.Requester
	tokens   tokenstore.Reader
	logger   zerolog.Logger

	lock     sync.RWMutex
	items    []T
	inFlight int
	err      string
}

// New builds a store for endpoint. tokens is the session's token slot; it is
// read before every call.
func New[T Record](api apiclient.Requester, tokens tokenstore.Reader, endpoint Endpoint, opts ...Option) *Store[T] {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		endpoint: endpoint,
		api:      api,
		tokens:   tokens,
		logger:   o.logger.With().Str("resource", endpoint.Name).Logger(),
		items:    []T{},
	}
}

// Endpoint returns the collection this store mirrors.
func (s *Store[T]) Endpoint() Endpoint {
	return s.endpoint
}

// FetchAll replaces the list with the server's current list.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	s.begin()
	var fetched []T
	err := s.send(ctx, http.MethodGet, s.endpoint.Path, nil, &fetched)
	s.complete(err, s.endpoint.Messages.Fetch, func() {
		if fetched == nil {
			fetched = []T{}
		}
		s.items = fetched
	})
	return s.wrap(err, "FetchAll")
}

// Add creates record on the server and appends the record the server returns.
func (s *Store[T]) Add(ctx context.Context, record T) (T, error) {
	s.begin()
	var created T
	err := s.send(ctx, http.MethodPost, s.endpoint.Path, record, &created)
	s.complete(err, s.endpoint.Messages.Add, func() {
		s.items = append(s.items, created)
	})
	if err != nil {
		var zero T
		return zero, s.wrap(err, "Add")
	}
	return created, nil
}

// Update sends record for id and swaps the local item with that id for the
// server's answer. Nothing is inserted when no local item has the id.
func (s *Store[T]) Update(ctx context.Context, id int64, record T) (T, error) {
	var zero T
	if !s.endpoint.Can(CanUpdate) {
		return zero, s.wrap(apperrors.ErrUnsupported, "Update")
	}

	s.begin()
	var updated T
	err := s.send(ctx, http.MethodPut, s.endpoint.itemPath(id), record, &updated)
	s.complete(err, s.endpoint.Messages.Update, func() {
		for i, item := range s.items {
			if item.RecordID() == id {
				s.items[i] = updated
				break
			}
		}
	})
	if err != nil {
		return zero, s.wrap(err, "Update")
	}
	return updated, nil
}

// Remove deletes id on the server and drops every local item with that id.
func (s *Store[T]) Remove(ctx context.Context, id int64) error {
	if !s.endpoint.Can(CanRemove) {
		return s.wrap(apperrors.ErrUnsupported, "Remove")
	}

	s.begin()
	err := s.send(ctx, http.MethodDelete, s.endpoint.itemPath(id), nil, nil)
	s.complete(err, s.endpoint.Messages.Remove, func() {
		kept := make([]T, 0, len(s.items))
		for _, item := range s.items {
			if item.RecordID() != id {
				kept = append(kept, item)
			}
		}
		s.items = kept
	})
	return s.wrap(err, "Remove")
}

// Items returns a copy of the current list.
func (s *Store[T]) Items() []T {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]T(nil), s.items...)
}

// Find returns the local item with id.
func (s *Store[T]) Find(id int64) (T, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, item := range s.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Loading is true while any call is in flight.
func (s *Store[T]) Loading() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.inFlight > 0
}

// Err is the message recorded by the last failed call, cleared when the next
// call starts.
func (s *Store[T]) Err() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.err
}

func (s *Store[T]) Snapshot() State[T] {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return State[T]{
		Items:   append([]T(nil), s.items...),
		Loading: s.inFlight > 0,
		Error:   s.err,
	}
}

func (s *Store[T]) begin() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.inFlight++
	s.err = ""
}

// complete ends a call. apply runs under the lock only when err is nil.
func (s *Store[T]) complete(err error, fallback string, apply func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.inFlight--
	if err != nil {
		s.err = apiclient.MessageOr(err, fallback)
		s.logger.Warn().Err(err).Str("message", s.err).Msg("resource call failed")
		return
	}
	apply()
}

func (s *Store[T]) send(ctx context.Context, method, path string, in, out any) error {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return &apiclient.Error{Kind: apiclient.KindAuth, Method: method, Path: path, Err: err}
	}
	return s.api.Send(ctx, method, path, token, in, out)
}

func (s *Store[T]) wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "[%s.%s]", s.endpoint.Name, op)
}
