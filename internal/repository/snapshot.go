package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/storage"
)

// Snapshot is a full copy of the reference data. It is also the shape of a
// seed file.
type Snapshot struct {
	Users                  []rbac.User                     `json:"users" yaml:"users"`
	Roles                  []rbac.Role                     `json:"roles" yaml:"roles"`
	Permissions            []rbac.PermissionGrant          `json:"permissions" yaml:"permissions"`
	StockSelectionCriteria []models.StockSelectionCriteria `json:"stockSelectionCriteria" yaml:"stockSelectionCriteria"`
	Pools                  []models.Pool                   `json:"pools" yaml:"pools"`
	Locations              []models.Location               `json:"locations" yaml:"locations"`
	Areas                  []models.Area                   `json:"areas" yaml:"areas"`
	StockLots              []models.StockLot               `json:"stockLots" yaml:"stockLots"`
}

// Merge appends other's records to s.
func (s *Snapshot) Merge(other Snapshot) {
	s.Users = append(s.Users, other.Users...)
	s.Roles = append(s.Roles, other.Roles...)
	s.Permissions = append(s.Permissions, other.Permissions...)
	s.StockSelectionCriteria = append(s.StockSelectionCriteria, other.StockSelectionCriteria...)
	s.Pools = append(s.Pools, other.Pools...)
	s.Locations = append(s.Locations, other.Locations...)
	s.Areas = append(s.Areas, other.Areas...)
	s.StockLots = append(s.StockLots, other.StockLots...)
}

// Validate checks every record and that ids are unique per kind. Records
// without an id are allowed; they get one when applied.
func (s Snapshot) Validate() error {
	return errors.Join(
		validateAll(storage.KindUsers, s.Users, func(u rbac.User) string { return u.ID }, validateUser),
		validateAll(storage.KindRoles, s.Roles, func(r rbac.Role) string { return r.ID }, validateRole),
		validateAll(storage.KindPermissions, s.Permissions, func(g rbac.PermissionGrant) string { return g.ID }, validateGrant),
		validateAll(storage.KindSSC, s.StockSelectionCriteria, func(c models.StockSelectionCriteria) string { return c.ID }, validateSSC),
		validateAll(storage.KindPools, s.Pools, func(p models.Pool) string { return p.ID }, models.Pool.Validate),
		validateAll(storage.KindLocations, s.Locations, func(l models.Location) string { return l.ID }, validateLocation),
		validateAll(storage.KindAreas, s.Areas, func(a models.Area) string { return a.ID }, validateArea),
		validateAll(storage.KindStockLots, s.StockLots, func(l models.StockLot) string { return l.ID }, validateStockLot),
	)
}

func validateAll[T any](kind storage.Kind, items []T, idOf func(T) string, validate func(T) error) error {
	var errs []error
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		id := idOf(item)
		if err := validate(item); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d] %s: %w", kind, i, id, err))
		}
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%s[%d]: %w: %s", kind, i, ErrDuplicateID, id))
		}
		seen[id] = struct{}{}
	}
	return errors.Join(errs...)
}

// Snapshot returns a copy of every collection.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Users:                  r.users.list(),
		Roles:                  r.roles.list(),
		Permissions:            r.grants.list(),
		StockSelectionCriteria: r.sscs.list(),
		Pools:                  r.pools.list(),
		Locations:              r.locations.list(),
		Areas:                  r.areas.list(),
		StockLots:              r.lots.list(),
	}
}

// Replace swaps in s wholesale and persists every kind. s is validated
// first; nothing changes if it is invalid.
func (r *Repository) Replace(ctx context.Context, s Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	r.mu.Lock()
	r.users.items = cloneAll(s.Users, r.users.clone)
	r.roles.items = cloneAll(s.Roles, r.roles.clone)
	r.grants.items = cloneAll(s.Permissions, r.grants.clone)
	r.sscs.items = cloneAll(s.StockSelectionCriteria, r.sscs.clone)
	r.pools.items = cloneAll(s.Pools, r.pools.clone)
	r.locations.items = cloneAll(s.Locations, r.locations.clone)
	r.areas.items = cloneAll(s.Areas, r.areas.clone)
	r.lots.items = cloneAll(s.StockLots, r.lots.clone)

	r.users.assignMissingIDs()
	r.roles.assignMissingIDs()
	r.grants.assignMissingIDs()
	r.sscs.assignMissingIDs()
	r.pools.assignMissingIDs()
	r.locations.assignMissingIDs()
	r.areas.assignMissingIDs()
	r.lots.assignMissingIDs()

	r.users.revision++
	r.roles.revision++
	r.grants.revision++
	r.sscs.revision++
	r.pools.revision++
	r.locations.revision++
	r.areas.revision++
	r.lots.revision++

	bodies := make(map[storage.Kind][]byte, 8)
	for _, c := range r.all() {
		c.markLoaded(nil)
		body, err := c.encode()
		if err != nil {
			r.mu.Unlock()
			return err
		}
		bodies[c.Kind()] = body
	}

	r.persistMu.Lock()
	r.mu.Unlock()
	defer r.persistMu.Unlock()

	if r.persister == nil {
		return nil
	}
	var errs []error
	for _, kind := range storage.Kinds() {
		if err := r.persister.Persist(ctx, kind, bodies[kind]); err != nil {
			errs = append(errs, fmt.Errorf("failed to persist %s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}
