package testutil

import (
	"context"
	"testing"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

// LotBuilder provides a fluent interface for creating test stock lots
type LotBuilder struct {
	lot models.StockLot
}

// NewLot starts a lot of 10 units owned, sourced and held by pool-main,
// all states Green.
func NewLot() *LotBuilder {
	return &LotBuilder{lot: models.StockLot{
		SKU:          "sku-bolts",
		MPID:         "pool-main",
		SPID:         "pool-main",
		CPID:         "pool-main",
		Quantity:     10,
		LocationID:   "loc-1",
		StockState:   models.RAGGreen,
		QualityState: models.RAGGreen,
		SupplyState:  models.RAGGreen,
	}}
}

func (b *LotBuilder) WithID(id string) *LotBuilder {
	b.lot.ID = id
	return b
}

func (b *LotBuilder) WithSKU(sku string) *LotBuilder {
	b.lot.SKU = sku
	return b
}

// Pools sets the managing, source and custody pools.
func (b *LotBuilder) Pools(mp, sp, cp string) *LotBuilder {
	b.lot.MPID, b.lot.SPID, b.lot.CPID = mp, sp, cp
	return b
}

func (b *LotBuilder) WithQuantity(q int) *LotBuilder {
	b.lot.Quantity = q
	return b
}

func (b *LotBuilder) InLocation(locationID string) *LotBuilder {
	b.lot.LocationID = locationID
	return b
}

func (b *LotBuilder) InArea(areaID string) *LotBuilder {
	b.lot.AreaID = areaID
	return b
}

func (b *LotBuilder) WithStockState(s models.RAGState) *LotBuilder {
	b.lot.StockState = s
	return b
}

func (b *LotBuilder) WithQualityState(s models.RAGState) *LotBuilder {
	b.lot.QualityState = s
	return b
}

func (b *LotBuilder) WithSupplyState(s models.RAGState) *LotBuilder {
	b.lot.SupplyState = s
	return b
}

func (b *LotBuilder) WithMarkings(ids ...string) *LotBuilder {
	b.lot.MarkingIDs = append(b.lot.MarkingIDs, ids...)
	return b
}

func (b *LotBuilder) Build() models.StockLot {
	return b.lot.Clone()
}

// Create stores the lot in repo and returns it with its assigned id.
func (b *LotBuilder) Create(t *testing.T, repo *repository.Repository) models.StockLot {
	t.Helper()
	lot, err := repo.CreateStockLot(context.Background(), b.Build())
	require.NoError(t, err, "Failed to create stock lot")
	return lot
}

// GrantBuilder provides a fluent interface for creating permission grants
type GrantBuilder struct {
	grant rbac.PermissionGrant
}

// NewGrant starts an unconstrained grant of action to roleID.
func NewGrant(roleID string, action rbac.Action) *GrantBuilder {
	return &GrantBuilder{grant: rbac.PermissionGrant{RoleID: roleID, Action: action}}
}

func (b *GrantBuilder) constraints() *rbac.Constraints {
	if b.grant.Constraints == nil {
		b.grant.Constraints = &rbac.Constraints{}
	}
	return b.grant.Constraints
}

// InPools restricts the grant to lots managed by one of ids. Calling it
// with no ids sets a present but empty list.
func (b *GrantBuilder) InPools(ids ...string) *GrantBuilder {
	c := b.constraints()
	c.AllowedPoolIDs = append(nonNil(c.AllowedPoolIDs), ids...)
	return b
}

func (b *GrantBuilder) InAreas(ids ...string) *GrantBuilder {
	c := b.constraints()
	c.AllowedAreaIDs = append(nonNil(c.AllowedAreaIDs), ids...)
	return b
}

func (b *GrantBuilder) MatchingSSCs(ids ...string) *GrantBuilder {
	c := b.constraints()
	c.MatchingSSCIDs = append(nonNil(c.MatchingSSCIDs), ids...)
	return b
}

// WithEmptyConstraints attaches a constraints object with no restrictions.
func (b *GrantBuilder) WithEmptyConstraints() *GrantBuilder {
	b.constraints()
	return b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (b *GrantBuilder) Build() rbac.PermissionGrant {
	return b.grant.Clone()
}

func (b *GrantBuilder) Create(t *testing.T, repo *repository.Repository) rbac.PermissionGrant {
	t.Helper()
	g, err := repo.CreateGrant(context.Background(), b.Build())
	require.NoError(t, err, "Failed to create grant")
	return g
}

// UserBuilder provides a fluent interface for creating test users
type UserBuilder struct {
	user rbac.User
}

func NewUser() *UserBuilder {
	return &UserBuilder{user: rbac.User{
		Name:  "Test User",
		Email: "test@example.com",
	}}
}

func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.ID = id
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithRoles(roleIDs ...string) *UserBuilder {
	b.user.RoleIDs = append(b.user.RoleIDs, roleIDs...)
	return b
}

func (b *UserBuilder) Build() rbac.User {
	return b.user.Clone()
}

func (b *UserBuilder) Create(t *testing.T, repo *repository.Repository) rbac.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), b.Build())
	require.NoError(t, err, "Failed to create user")
	return u
}

// TestOrganisation is a small warehouse: a receiving dock and a main
// inventory pool, one site with a dock and a storage area, and an admin
// holding every action.
type TestOrganisation struct {
	MainPool      models.Pool
	ReceivingPool models.Pool
	VendorPool    models.Pool
	Site          models.Location
	DockArea      models.Area
	StorageArea   models.Area
	AdminRole     rbac.Role
	Admin         rbac.User
}

func SeedOrganisation(t *testing.T, repo *repository.Repository) *TestOrganisation {
	t.Helper()
	ctx := context.Background()
	org := &TestOrganisation{}

	var err error
	org.MainPool, err = repo.CreatePool(ctx, models.Pool{
		ID: "pool-main", Code: "MAIN", Name: "Main stock",
		Nature: models.NatureInventory, Subtype: models.SubtypeStockInTrade,
	})
	require.NoError(t, err)
	org.ReceivingPool, err = repo.CreatePool(ctx, models.Pool{
		ID: "pool-receiving", Code: "RCV", Name: "Receiving",
		Nature: models.NatureControlAccount, Subtype: models.SubtypePurchase,
	})
	require.NoError(t, err)
	org.VendorPool, err = repo.CreatePool(ctx, models.Pool{
		ID: "pool-vendor", Code: "VND", Name: "Vendor",
		Nature: models.NatureThirdParty, Subtype: models.SubtypeNone,
	})
	require.NoError(t, err)

	org.Site, err = repo.CreateLocation(ctx, models.Location{ID: "loc-1", Name: "Main site"})
	require.NoError(t, err)
	org.DockArea, err = repo.CreateArea(ctx, models.Area{ID: "area-receiving", LocationID: "loc-1", Name: "Dock"})
	require.NoError(t, err)
	org.StorageArea, err = repo.CreateArea(ctx, models.Area{ID: "area-storage", LocationID: "loc-1", Name: "Racking"})
	require.NoError(t, err)

	org.AdminRole, err = repo.CreateRole(ctx, rbac.Role{ID: "role-admin", Name: "Administrator"})
	require.NoError(t, err)
	for _, action := range rbac.AllActions() {
		NewGrant(org.AdminRole.ID, action).Create(t, repo)
	}
	org.Admin = NewUser().WithID("user-admin").WithEmail("admin@example.com").WithRoles(org.AdminRole.ID).Create(t, repo)

	return org
}
