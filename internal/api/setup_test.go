package api

import (
	"testing"

	"github.com/USSTM/wms-backend/internal/auth"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/repository"
	"github.com/USSTM/wms-backend/internal/stock"
	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/USSTM/wms-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	*testutil.TestServer
	repo *repository.Repository
	org  *testutil.TestOrganisation
}

// newTestAPI serves the full router over an in-memory repository seeded
// with the test organisation. store may be nil.
func newTestAPI(t *testing.T, store storage.DocumentStore) *testAPI {
	t.Helper()
	return newTestAPIWithPersister(t, store, nil)
}

func newTestAPIWithPersister(t *testing.T, store storage.DocumentStore, persister repository.Persister) *testAPI {
	t.Helper()

	repo := repository.New(store, persister)
	org := testutil.SeedOrganisation(t, repo)

	server := NewServer(
		repo,
		rbac.NewAuthorizer(repo, nil),
		stock.NewClassifier([]string{org.MainPool.ID}),
		stock.NewInbound(org.ReceivingPool.ID, org.DockArea.ID),
	)
	handler, err := NewRouter(server, RouterOptions{Authenticator: auth.NewAuthenticator(repo)})
	require.NoError(t, err)

	return &testAPI{
		TestServer: testutil.NewTestServer(t, handler),
		repo:       repo,
		org:        org,
	}
}

// newClerk creates a user whose only role holds the given grants.
func (a *testAPI) newClerk(t *testing.T, id string, grants ...*testutil.GrantBuilder) rbac.User {
	t.Helper()
	role, err := a.repo.CreateRole(t.Context(), rbac.Role{ID: "role-" + id, Name: id})
	require.NoError(t, err)
	for _, g := range grants {
		built := g.Build()
		built.RoleID = role.ID
		_, err := a.repo.CreateGrant(t.Context(), built)
		require.NoError(t, err)
	}
	return testutil.NewUser().WithID(id).WithRoles(role.ID).Create(t, a.repo)
}

// data returns the "data" array of a list response.
func data(t *testing.T, resp *testutil.Response) []interface{} {
	t.Helper()
	items, ok := resp.Body["data"].([]interface{})
	require.True(t, ok, "response has no data array: %s", resp.ResponseRecorder.Body.String())
	return items
}
