package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/clients"
	"github.com/jrsteele09/materials-admin/guard"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/materials"
	"github.com/jrsteele09/materials-admin/purchases"
	"github.com/jrsteele09/materials-admin/resource"
	"github.com/jrsteele09/materials-admin/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ Repo = (*InMemoryRepo)(nil)

type entry struct {
	ws       *Workspace
	lastSeen time.Time
}

// InMemoryRepo keeps workspaces in process memory. Tokens live in the
// TokenSlots given to it, so with Redis slots a restarted console picks the
// session back up from the browser's cookie. Workspaces idle for longer than
// the idle TTL are dropped together with their token slot.
//
// Ids are always generated here; a cookie value is never trusted to name a
// new workspace.
type InMemoryRepo struct {
	api     apiclient.Requester
	slots   TokenSlots
	idleTTL time.Duration
	logger  zerolog.Logger
	nowFunc func() time.Time

	lock       sync.Mutex
	workspaces map[string]*entry
}

type Option func(*InMemoryRepo)

// WithIdleTTL drops workspaces that have not been used for ttl.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *InMemoryRepo) {
		r.idleTTL = ttl
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *InMemoryRepo) {
		r.logger = logger
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowFunc = now
	}
}

func NewInMemoryRepo(api apiclient.Requester, slots TokenSlots, options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		api:        api,
		slots:      slots,
		idleTTL:    12 * time.Hour,
		logger:     log.Logger,
		nowFunc:    time.Now,
		workspaces: make(map[string]*entry),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) Find(ctx context.Context, id string) (*Workspace, bool) {
	if id == "" {
		return nil, false
	}
	now := r.nowFunc()

	r.lock.Lock()
	expired := r.sweepLocked(now)
	e, ok := r.workspaces[id]
	if ok {
		e.lastSeen = now
	}
	r.lock.Unlock()
	r.forget(expired)

	if ok {
		return e.ws, true
	}
	return r.adopt(ctx, id, now)
}

// adopt resumes a workspace whose token outlived the process.
func (r *InMemoryRepo) adopt(ctx context.Context, id string, now time.Time) (*Workspace, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	if _, err := r.slots.For(id).Get(ctx); err != nil {
		r.slots.Forget(id)
		return nil, false
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if e, ok := r.workspaces[id]; ok {
		e.lastSeen = now
		return e.ws, true
	}
	ws := r.build(id, now)
	r.workspaces[id] = &entry{ws: ws, lastSeen: now}
	r.logger.Debug().Str("workspace", shortID(id)).Msg("workspace resumed")
	return ws, true
}

func (r *InMemoryRepo) Create() *Workspace {
	return r.build(uuid.NewString(), r.nowFunc())
}

func (r *InMemoryRepo) Keep(ws *Workspace) {
	now := r.nowFunc()

	r.lock.Lock()
	expired := r.sweepLocked(now)
	r.workspaces[ws.ID] = &entry{ws: ws, lastSeen: now}
	r.lock.Unlock()
	r.forget(expired)

	r.logger.Debug().Str("workspace", shortID(ws.ID)).Msg("workspace opened")
}

func (r *InMemoryRepo) Get(id string) (*Workspace, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	e, ok := r.workspaces[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "[InMemoryRepo.Get] workspace %s", id)
	}
	return e.ws, nil
}

// Delete forgets the workspace and its token slot.
func (r *InMemoryRepo) Delete(id string) error {
	r.lock.Lock()
	delete(r.workspaces, id)
	r.lock.Unlock()

	r.slots.Forget(id)
	return nil
}

func (r *InMemoryRepo) forget(ids []string) {
	for _, id := range ids {
		r.slots.Forget(id)
	}
}

// Len is the number of live workspaces.
func (r *InMemoryRepo) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.workspaces)
}

func (r *InMemoryRepo) build(id string, now time.Time) *Workspace {
	logger := r.logger.With().Str("workspace", shortID(id)).Logger()
	tokens := r.slots.For(id)
	manager := session.New(r.api, tokens, session.WithLogger(logger))
	storeOpts := []resource.Option{resource.WithLogger(logger)}

	return &Workspace{
		ID:        id,
		Session:   manager,
		Guard:     guard.New(manager),
		Materials: materials.NewStore(r.api, tokens, storeOpts...),
		Clients:   clients.NewStore(r.api, tokens, storeOpts...),
		Purchases: purchases.NewStore(r.api, tokens, storeOpts...),
		CreatedAt: now,
	}
}

// sweepLocked drops idle workspaces and returns their ids so the caller can
// release the token slots outside the lock.
func (r *InMemoryRepo) sweepLocked(now time.Time) []string {
	if r.idleTTL <= 0 {
		return nil
	}
	var expired []string
	for id, e := range r.workspaces {
		if now.Sub(e.lastSeen) > r.idleTTL {
			delete(r.workspaces, id)
			expired = append(expired, id)
		}
	}
	return expired
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
