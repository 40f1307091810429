package repository

import (
	"context"
	"fmt"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
)

func create[T any](ctx context.Context, r *Repository, c *collection[T], item T) (T, error) {
	var zero T
	if err := c.validate(item); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	item = c.clone(item)

	r.mu.Lock()
	if err := c.writable(); err != nil {
		r.mu.Unlock()
		return zero, err
	}
	id := c.id(&item)
	if *id == "" {
		*id = c.newID()
	} else if c.index(*id) >= 0 {
		r.mu.Unlock()
		return zero, fmt.Errorf("%w: %s %s", ErrDuplicateID, c.kind, *id)
	}
	c.items = append(c.items, item)
	c.revision++
	created := c.clone(item)

	body, err := c.encode()
	if err != nil {
		r.mu.Unlock()
		return zero, err
	}
	return created, r.persistLocked(ctx, c.kind, body)
}

func update[T any](ctx context.Context, r *Repository, c *collection[T], item T) (T, error) {
	var zero T
	if err := c.validate(item); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	item = c.clone(item)
	id := *c.id(&item)

	r.mu.Lock()
	if err := c.writable(); err != nil {
		r.mu.Unlock()
		return zero, err
	}
	i := c.index(id)
	if i < 0 {
		r.mu.Unlock()
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.kind, id)
	}
	c.items[i] = item
	c.revision++
	updated := c.clone(item)

	body, err := c.encode()
	if err != nil {
		r.mu.Unlock()
		return zero, err
	}
	return updated, r.persistLocked(ctx, c.kind, body)
}

func remove[T any](ctx context.Context, r *Repository, c *collection[T], id string) error {
	r.mu.Lock()
	if err := c.writable(); err != nil {
		r.mu.Unlock()
		return err
	}
	i := c.index(id)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s %s", ErrNotFound, c.kind, id)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.revision++
	if c.onDelete != nil {
		c.onDelete(c.items, id)
	}

	body, err := c.encode()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	return r.persistLocked(ctx, c.kind, body)
}

// unparentPools detaches the direct children of a deleted pool.
func unparentPools(pools []models.Pool, id string) {
	for i := range pools {
		if pools[i].ParentID == id {
			pools[i].ParentID = ""
			pools[i].IsNested = false
		}
	}
}

func unparentLocations(locations []models.Location, id string) {
	for i := range locations {
		if locations[i].ParentID == id {
			locations[i].ParentID = ""
			locations[i].IsNested = false
		}
	}
}

func (r *Repository) CreateUser(ctx context.Context, u rbac.User) (rbac.User, error) {
	return create(ctx, r, r.users, u)
}

func (r *Repository) UpdateUser(ctx context.Context, u rbac.User) (rbac.User, error) {
	return update(ctx, r, r.users, u)
}

func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	return remove(ctx, r, r.users, id)
}

func (r *Repository) CreateRole(ctx context.Context, role rbac.Role) (rbac.Role, error) {
	return create(ctx, r, r.roles, role)
}

func (r *Repository) UpdateRole(ctx context.Context, role rbac.Role) (rbac.Role, error) {
	return update(ctx, r, r.roles, role)
}

func (r *Repository) DeleteRole(ctx context.Context, id string) error {
	return remove(ctx, r, r.roles, id)
}

func (r *Repository) CreateGrant(ctx context.Context, g rbac.PermissionGrant) (rbac.PermissionGrant, error) {
	return create(ctx, r, r.grants, g)
}

func (r *Repository) UpdateGrant(ctx context.Context, g rbac.PermissionGrant) (rbac.PermissionGrant, error) {
	return update(ctx, r, r.grants, g)
}

func (r *Repository) DeleteGrant(ctx context.Context, id string) error {
	return remove(ctx, r, r.grants, id)
}

func (r *Repository) CreateSSC(ctx context.Context, s models.StockSelectionCriteria) (models.StockSelectionCriteria, error) {
	return create(ctx, r, r.sscs, s)
}

func (r *Repository) UpdateSSC(ctx context.Context, s models.StockSelectionCriteria) (models.StockSelectionCriteria, error) {
	return update(ctx, r, r.sscs, s)
}

func (r *Repository) DeleteSSC(ctx context.Context, id string) error {
	return remove(ctx, r, r.sscs, id)
}

func (r *Repository) CreatePool(ctx context.Context, p models.Pool) (models.Pool, error) {
	return create(ctx, r, r.pools, p)
}

func (r *Repository) UpdatePool(ctx context.Context, p models.Pool) (models.Pool, error) {
	return update(ctx, r, r.pools, p)
}

// DeletePool removes the pool and clears parentId on its direct children.
func (r *Repository) DeletePool(ctx context.Context, id string) error {
	return remove(ctx, r, r.pools, id)
}

func (r *Repository) CreateLocation(ctx context.Context, l models.Location) (models.Location, error) {
	return create(ctx, r, r.locations, l)
}

func (r *Repository) UpdateLocation(ctx context.Context, l models.Location) (models.Location, error) {
	return update(ctx, r, r.locations, l)
}

// DeleteLocation removes the location and clears parentId on its direct
// children. Areas in the location are kept.
func (r *Repository) DeleteLocation(ctx context.Context, id string) error {
	return remove(ctx, r, r.locations, id)
}

func (r *Repository) CreateArea(ctx context.Context, a models.Area) (models.Area, error) {
	return create(ctx, r, r.areas, a)
}

func (r *Repository) UpdateArea(ctx context.Context, a models.Area) (models.Area, error) {
	return update(ctx, r, r.areas, a)
}

func (r *Repository) DeleteArea(ctx context.Context, id string) error {
	return remove(ctx, r, r.areas, id)
}

func (r *Repository) CreateStockLot(ctx context.Context, l models.StockLot) (models.StockLot, error) {
	return create(ctx, r, r.lots, l)
}

func (r *Repository) UpdateStockLot(ctx context.Context, l models.StockLot) (models.StockLot, error) {
	return update(ctx, r, r.lots, l)
}

func (r *Repository) DeleteStockLot(ctx context.Context, id string) error {
	return remove(ctx, r, r.lots, id)
}
