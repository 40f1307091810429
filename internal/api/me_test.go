package api

import (
	"net/http"
	"testing"

	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_GetMe(t *testing.T) {
	api := newTestAPI(t, nil)

	t.Run("missing user header is 401", func(t *testing.T) {
		resp := api.MakeRequest(t, testutil.Request{Method: http.MethodGet, Path: "/me"})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, CodeAuthRequired, resp.ErrorCode())
	})

	t.Run("unknown user is 401", func(t *testing.T) {
		resp := api.RequestAs(t, "user-ghost", testutil.Request{Method: http.MethodGet, Path: "/me"})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, CodeAuthRequired, resp.ErrorCode())
	})

	t.Run("admin sees every action", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{Method: http.MethodGet, Path: "/me"})

		require.Equal(t, http.StatusOK, resp.Code)
		user := resp.Body["user"].(map[string]interface{})
		assert.Equal(t, api.org.Admin.ID, user["id"])
		assert.Len(t, resp.Body["allowedActions"], len(rbac.AllActions()))
	})

	t.Run("constrained grants do not show without lot context", func(t *testing.T) {
		clerk := api.newClerk(t, "user-nav",
			testutil.NewGrant("", rbac.ViewPools),
			testutil.NewGrant("", rbac.AllocateStock).InPools(api.org.ReceivingPool.ID))

		resp := api.RequestAs(t, clerk.ID, testutil.Request{Method: http.MethodGet, Path: "/me"})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []interface{}{"VIEW_POOLS"}, resp.Body["allowedActions"])
	})

	t.Run("user without roles gets an empty list", func(t *testing.T) {
		loner := testutil.NewUser().WithID("user-loner").Create(t, api.repo)

		resp := api.RequestAs(t, loner.ID, testutil.Request{Method: http.MethodGet, Path: "/me"})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []interface{}{}, resp.Body["allowedActions"])
	})
}

func TestServer_GetMyPermissions(t *testing.T) {
	api := newTestAPI(t, nil)

	t.Run("lists roles and grants", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{Method: http.MethodGet, Path: "/me/permissions"})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, resp.Body["roles"], 1)
		assert.Len(t, resp.Body["grants"], len(rbac.AllActions()))
	})

	t.Run("requires VIEW_PERMISSIONS", func(t *testing.T) {
		clerk := api.newClerk(t, "user-clerk", testutil.NewGrant("", rbac.ViewPools))

		resp := api.RequestAs(t, clerk.ID, testutil.Request{Method: http.MethodGet, Path: "/me/permissions"})

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, CodePermissionDenied, resp.ErrorCode())
	})
}

func TestServer_CheckAuthorization(t *testing.T) {
	api := newTestAPI(t, nil)

	clerk := api.newClerk(t, "user-receiver",
		testutil.NewGrant("", rbac.AllocateStock).InPools(api.org.ReceivingPool.ID))
	received := testutil.NewLot().WithID("lot-received").
		Pools(api.org.ReceivingPool.ID, api.org.VendorPool.ID, api.org.ReceivingPool.ID).
		InArea(api.org.DockArea.ID).
		Create(t, api.repo)
	stored := testutil.NewLot().WithID("lot-stored").InArea(api.org.StorageArea.ID).Create(t, api.repo)

	check := func(t *testing.T, userID string, params map[string]string) *testutil.Response {
		return api.RequestAs(t, userID, testutil.Request{
			Method:      http.MethodGet,
			Path:        "/authz/check",
			QueryParams: params,
		})
	}

	t.Run("constraint matches the lot", func(t *testing.T) {
		resp := check(t, clerk.ID, map[string]string{"action": "ALLOCATE_STOCK", "lotId": received.ID})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, true, resp.Body["allowed"])
		assert.Equal(t, received.ID, resp.Body["lotId"])
	})

	t.Run("constraint rejects another pool", func(t *testing.T) {
		resp := check(t, clerk.ID, map[string]string{"action": "ALLOCATE_STOCK", "lotId": stored.ID})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, false, resp.Body["allowed"])
	})

	t.Run("constrained grant denies without lot", func(t *testing.T) {
		resp := check(t, clerk.ID, map[string]string{"action": "allocate_stock"})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ALLOCATE_STOCK", resp.Body["action"])
		assert.Equal(t, false, resp.Body["allowed"])
	})

	t.Run("unknown action is a validation error", func(t *testing.T) {
		resp := check(t, clerk.ID, map[string]string{"action": "FLY"})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, CodeValidationError, resp.ErrorCode())
	})

	t.Run("missing action is rejected by the validator", func(t *testing.T) {
		resp := check(t, clerk.ID, nil)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, CodeValidationError, resp.ErrorCode())
	})

	t.Run("unknown lot is 404", func(t *testing.T) {
		resp := check(t, clerk.ID, map[string]string{"action": "ALLOCATE_STOCK", "lotId": "lot-missing"})

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, CodeResourceNotFound, resp.ErrorCode())
	})
}
