package api

import (
	"context"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
)

// ReferenceStore is the reference data the handlers read and edit.
type ReferenceStore interface {
	Ping(ctx context.Context) error

	Users() []rbac.User
	Roles() []rbac.Role
	Permissions() []rbac.PermissionGrant
	StockSelectionCriteria() []models.StockSelectionCriteria
	Pools() []models.Pool
	Locations() []models.Location
	Areas() []models.Area
	StockLots() []models.StockLot

	Pool(id string) (models.Pool, bool)
	Area(id string) (models.Area, bool)
	StockLot(id string) (models.StockLot, bool)

	CreatePool(ctx context.Context, p models.Pool) (models.Pool, error)
	UpdatePool(ctx context.Context, p models.Pool) (models.Pool, error)
	DeletePool(ctx context.Context, id string) error
	CreateLocation(ctx context.Context, l models.Location) (models.Location, error)
	UpdateLocation(ctx context.Context, l models.Location) (models.Location, error)
	DeleteLocation(ctx context.Context, id string) error
	CreateArea(ctx context.Context, a models.Area) (models.Area, error)
	UpdateArea(ctx context.Context, a models.Area) (models.Area, error)
	DeleteArea(ctx context.Context, id string) error
	CreateSSC(ctx context.Context, s models.StockSelectionCriteria) (models.StockSelectionCriteria, error)
	UpdateSSC(ctx context.Context, s models.StockSelectionCriteria) (models.StockSelectionCriteria, error)
	DeleteSSC(ctx context.Context, id string) error
	CreateGrant(ctx context.Context, g rbac.PermissionGrant) (rbac.PermissionGrant, error)
	UpdateGrant(ctx context.Context, g rbac.PermissionGrant) (rbac.PermissionGrant, error)
	DeleteGrant(ctx context.Context, id string) error
	UpdateStockLot(ctx context.Context, l models.StockLot) (models.StockLot, error)
}

// AuthorizerService decides permissions for the acting user.
type AuthorizerService interface {
	Can(user *rbac.User, action rbac.Action, ctx rbac.Context) bool
	GrantsFor(user *rbac.User) []rbac.PermissionGrant
	AllowedActions(user *rbac.User) []rbac.Action
}
