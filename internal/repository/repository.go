package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/USSTM/wms-backend/internal/logging"
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/storage"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")
	ErrInvalid     = errors.New("invalid record")
	// ErrUnavailable is returned for writes to a kind whose last load failed.
	ErrUnavailable = errors.New("reference data unavailable")
)

// Persister receives the full serialized collection after every mutation.
type Persister interface {
	Persist(ctx context.Context, kind storage.Kind, body []byte) error
}

// StorePersister writes straight through to a document store.
type StorePersister struct {
	Store storage.DocumentStore
}

func (p StorePersister) Persist(ctx context.Context, kind storage.Kind, body []byte) error {
	return p.Store.Put(ctx, kind.Document(), body)
}

// BackgroundPersister is a Persister whose writes reach the store some time
// after Persist returns. Pending reports whether an accepted write for kind
// may still be missing from the store.
type BackgroundPersister interface {
	Persister
	Pending(ctx context.Context, kind storage.Kind) (bool, error)
}

// loadable is the kind-independent view of a collection used for bulk
// load, replace and export.
type loadable interface {
	Kind() storage.Kind
	replace(data []byte) error
	reset()
	encode() ([]byte, error)
	count() int
	changes() uint64
	markLoaded(err error)
}

func (c *collection[T]) Kind() storage.Kind { return c.kind }

func (c *collection[T]) replace(data []byte) error {
	items, err := c.decode(data)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

func (c *collection[T]) reset() { c.items = nil }

func (c *collection[T]) changes() uint64 { return c.revision }

func (c *collection[T]) markLoaded(err error) { c.degraded = err != nil }

// Repository holds the in-memory reference data snapshot. Reads return
// copies; writes are last-write-wins and are handed to the Persister in the
// order they were applied.
type Repository struct {
	mu        sync.RWMutex
	persistMu sync.Mutex

	store     storage.DocumentStore
	persister Persister

	users     *collection[rbac.User]
	roles     *collection[rbac.Role]
	grants    *collection[rbac.PermissionGrant]
	sscs      *collection[models.StockSelectionCriteria]
	pools     *collection[models.Pool]
	locations *collection[models.Location]
	areas     *collection[models.Area]
	lots      *collection[models.StockLot]
}

// New creates an empty repository. store is read by Load and may be nil;
// persister may be nil for a purely in-memory repository.
func New(store storage.DocumentStore, persister Persister) *Repository {
	return &Repository{
		store:     store,
		persister: persister,
		users: &collection[rbac.User]{
			kind: storage.KindUsers, prefix: "user-",
			id:       func(u *rbac.User) *string { return &u.ID },
			clone:    rbac.User.Clone,
			validate: validateUser,
		},
		roles: &collection[rbac.Role]{
			kind: storage.KindRoles, prefix: "role-",
			id:       func(r *rbac.Role) *string { return &r.ID },
			clone:    identity[rbac.Role],
			validate: validateRole,
		},
		grants: &collection[rbac.PermissionGrant]{
			kind: storage.KindPermissions, prefix: "grant-",
			id:       func(g *rbac.PermissionGrant) *string { return &g.ID },
			clone:    rbac.PermissionGrant.Clone,
			validate: validateGrant,
		},
		sscs: &collection[models.StockSelectionCriteria]{
			kind: storage.KindSSC, prefix: "ssc-",
			id:       func(s *models.StockSelectionCriteria) *string { return &s.ID },
			clone:    identity[models.StockSelectionCriteria],
			validate: validateSSC,
		},
		pools: &collection[models.Pool]{
			kind: storage.KindPools, prefix: "pool-",
			id:       func(p *models.Pool) *string { return &p.ID },
			clone:    identity[models.Pool],
			validate: models.Pool.Validate,
			onDelete: unparentPools,
		},
		locations: &collection[models.Location]{
			kind: storage.KindLocations, prefix: "loc-",
			id:       func(l *models.Location) *string { return &l.ID },
			clone:    identity[models.Location],
			validate: validateLocation,
			onDelete: unparentLocations,
		},
		areas: &collection[models.Area]{
			kind: storage.KindAreas, prefix: "area-",
			id:       func(a *models.Area) *string { return &a.ID },
			clone:    models.Area.Clone,
			validate: validateArea,
		},
		lots: &collection[models.StockLot]{
			kind: storage.KindStockLots, prefix: "lot-",
			id:       func(l *models.StockLot) *string { return &l.ID },
			clone:    models.StockLot.Clone,
			validate: validateStockLot,
		},
	}
}

func (r *Repository) all() []loadable {
	return []loadable{r.users, r.roles, r.grants, r.sscs, r.pools, r.locations, r.areas, r.lots}
}

// Load replaces every collection with the store's current documents. A
// document that cannot be fetched or decoded leaves its collection empty and
// read-only until a later load succeeds; the failures are logged and returned
// joined, but the other collections are still loaded. A collection changed in
// process while the load ran, or with writes still queued in a
// BackgroundPersister, keeps its in-memory state.
func (r *Repository) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	r.mu.RLock()
	before := make(map[storage.Kind]uint64, 8)
	for _, c := range r.all() {
		before[c.Kind()] = c.changes()
	}
	r.mu.RUnlock()
	r.waitForPersists()

	pending := r.pendingKinds(ctx)

	docs := make(map[storage.Kind][]byte)
	failed := make(map[storage.Kind]error)
	for _, c := range r.all() {
		if pending[c.Kind()] {
			continue
		}
		data, err := r.store.Get(ctx, c.Kind().Document())
		switch {
		case errors.Is(err, storage.ErrDocumentNotFound):
			logging.Info("Reference document missing, starting empty", "kind", c.Kind())
		case err != nil:
			logging.Warn("Failed to fetch reference document", "kind", c.Kind(), "error", err)
			failed[c.Kind()] = err
		default:
			docs[c.Kind()] = data
		}
	}

	var errs []error
	r.mu.Lock()
	for _, c := range r.all() {
		kind := c.Kind()
		if pending[kind] {
			logging.Info("Skipping reload of reference document with queued writes", "kind", kind)
			continue
		}
		if c.changes() != before[kind] {
			logging.Info("Skipping reload of reference document changed during load", "kind", kind)
			continue
		}
		if err, ok := failed[kind]; ok {
			errs = append(errs, err)
			c.reset()
			c.markLoaded(err)
			continue
		}
		data, ok := docs[kind]
		if !ok {
			c.reset()
			c.markLoaded(nil)
			continue
		}
		err := c.replace(data)
		if err != nil {
			logging.Warn("Failed to decode reference document", "kind", kind, "error", err)
			errs = append(errs, err)
			c.reset()
		}
		c.markLoaded(err)
	}

	assigned := r.grants.assignMissingIDs()
	if assigned == 0 {
		r.mu.Unlock()
		return errors.Join(errs...)
	}

	logging.Info("Assigned ids to permission grants", "count", assigned)
	r.grants.revision++
	body, err := r.grants.encode()
	if err != nil {
		r.mu.Unlock()
		return errors.Join(append(errs, err)...)
	}
	if err := r.persistLocked(ctx, storage.KindPermissions, body); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// waitForPersists returns once every write applied so far has been handed to
// the persister. Writers take persistMu before releasing mu.
func (r *Repository) waitForPersists() {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()
}

// pendingKinds asks a BackgroundPersister which kinds still have writes
// queued. A kind whose state cannot be determined counts as pending.
func (r *Repository) pendingKinds(ctx context.Context) map[storage.Kind]bool {
	bg, ok := r.persister.(BackgroundPersister)
	if !ok {
		return nil
	}
	out := make(map[storage.Kind]bool)
	for _, kind := range storage.Kinds() {
		pending, err := bg.Pending(ctx, kind)
		if err != nil {
			logging.Warn("Failed to check queued writes", "kind", kind, "error", err)
			pending = true
		}
		if pending {
			out[kind] = true
		}
	}
	return out
}

// persistLocked must be called with mu held for writing. It releases mu
// before the write but keeps writes in mutation order.
func (r *Repository) persistLocked(ctx context.Context, kind storage.Kind, body []byte) error {
	r.persistMu.Lock()
	r.mu.Unlock()
	defer r.persistMu.Unlock()

	if r.persister == nil {
		return nil
	}
	if err := r.persister.Persist(ctx, kind, body); err != nil {
		return fmt.Errorf("failed to persist %s: %w", kind, err)
	}
	return nil
}

// Counts reports the number of records per kind.
func (r *Repository) Counts() map[storage.Kind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[storage.Kind]int, 8)
	for _, c := range r.all() {
		out[c.Kind()] = c.count()
	}
	return out
}

// Export serializes every collection as it would be persisted.
func (r *Repository) Export() (map[storage.Kind][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[storage.Kind][]byte, 8)
	for _, c := range r.all() {
		body, err := c.encode()
		if err != nil {
			return nil, err
		}
		out[c.Kind()] = body
	}
	return out, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Ping(ctx)
}

func (r *Repository) Users() []rbac.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users.list()
}

func (r *Repository) Roles() []rbac.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roles.list()
}

func (r *Repository) Permissions() []rbac.PermissionGrant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grants.list()
}

func (r *Repository) StockSelectionCriteria() []models.StockSelectionCriteria {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sscs.list()
}

func (r *Repository) Pools() []models.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pools.list()
}

func (r *Repository) Locations() []models.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locations.list()
}

func (r *Repository) Areas() []models.Area {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.areas.list()
}

func (r *Repository) StockLots() []models.StockLot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lots.list()
}

func (r *Repository) User(id string) (rbac.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users.get(id)
}

func (r *Repository) Pool(id string) (models.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pools.get(id)
}

func (r *Repository) Area(id string) (models.Area, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.areas.get(id)
}

func (r *Repository) StockLot(id string) (models.StockLot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lots.get(id)
}

func (r *Repository) Grant(id string) (rbac.PermissionGrant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grants.get(id)
}

var _ rbac.GrantSource = (*Repository)(nil)
