package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/stock"
	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/USSTM/wms-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServer_GetStockSummary(t *testing.T) {
	api := newTestAPI(t, nil)
	main, vendor := api.org.MainPool.ID, api.org.VendorPool.ID

	testutil.NewLot().Pools(main, main, main).WithQuantity(10).Create(t, api.repo)
	testutil.NewLot().Pools(main, vendor, main).WithQuantity(5).Create(t, api.repo)
	testutil.NewLot().Pools(vendor, vendor, vendor).WithQuantity(100).Create(t, api.repo)

	t.Run("returns the six metrics in order", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{Method: http.MethodGet, Path: "/dashboard/stock-summary"})
		require.Equal(t, http.StatusOK, resp.Code)

		var summary StockSummaryResponse
		resp.Decode(t, &summary)
		assert.Equal(t, []string{main}, summary.MyPools)
		require.Len(t, summary.Data, 6)

		labels := make([]string, len(summary.Data))
		for i, d := range summary.Data {
			labels[i] = d.Label
		}
		assert.Equal(t, stock.Labels(), labels)

		assert.Equal(t, 15, stock.Value(summary.Data, stock.LabelStockInHand))
		assert.Equal(t, 15, stock.Value(summary.Data, stock.LabelCurrentStock))
		assert.Equal(t, 10, stock.Value(summary.Data, stock.LabelMyOwnedStock))
		assert.Equal(t, 5, stock.Value(summary.Data, stock.LabelI3PSInHand))
		assert.Equal(t, 0, stock.Value(summary.Data, stock.LabelO3PSOwned))
		assert.Equal(t, 0, stock.Value(summary.Data, stock.LabelChainConsign))
	})

	t.Run("requires VIEW_DASHBOARD", func(t *testing.T) {
		clerk := api.newClerk(t, "user-no-dash", testutil.NewGrant("", rbac.ViewPools))

		resp := api.RequestAs(t, clerk.ID, testutil.Request{Method: http.MethodGet, Path: "/dashboard/stock-summary"})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestServer_ListStockLots(t *testing.T) {
	api := newTestAPI(t, nil)
	for _, id := range []string{"lot-a", "lot-b", "lot-c"} {
		testutil.NewLot().WithID(id).Create(t, api.repo)
	}

	t.Run("first page", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{
			Method:      http.MethodGet,
			Path:        "/stock-lots",
			QueryParams: map[string]string{"limit": "2"},
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var page StockLotsResponse
		resp.Decode(t, &page)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "lot-a", page.Data[0].ID)
		assert.Equal(t, PaginationMeta{Total: 3, Limit: 2, Offset: 0, HasMore: true}, page.Meta)
	})

	t.Run("last page", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{
			Method:      http.MethodGet,
			Path:        "/stock-lots",
			QueryParams: map[string]string{"limit": "2", "offset": "2"},
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var page StockLotsResponse
		resp.Decode(t, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "lot-c", page.Data[0].ID)
		assert.False(t, page.Meta.HasMore)
	})

	t.Run("offset past the end is empty", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{
			Method:      http.MethodGet,
			Path:        "/stock-lots",
			QueryParams: map[string]string{"offset": "10"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, data(t, resp))
	})

	t.Run("non-numeric limit is rejected", func(t *testing.T) {
		resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{
			Method:      http.MethodGet,
			Path:        "/stock-lots",
			QueryParams: map[string]string{"limit": "lots"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

// receivedLot is a lot waiting on the dock: owned and held by receiving,
// sourced from the vendor, quality still pending.
func receivedLot(t *testing.T, api *testAPI, id string) models.StockLot {
	t.Helper()
	return testutil.NewLot().WithID(id).
		Pools(api.org.ReceivingPool.ID, api.org.VendorPool.ID, api.org.ReceivingPool.ID).
		InArea(api.org.DockArea.ID).
		WithStockState(models.RAGAmber).
		WithQualityState(models.RAGAmber).
		WithSupplyState(models.RAGRed).
		WithMarkings("mark-1").
		Create(t, api.repo)
}

func TestServer_ListInbound(t *testing.T) {
	api := newTestAPI(t, nil)
	lot := receivedLot(t, api, "lot-dock")
	testutil.NewLot().WithID("lot-stored").InArea(api.org.StorageArea.ID).Create(t, api.repo)

	resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{Method: http.MethodGet, Path: "/inbound"})
	require.Equal(t, http.StatusOK, resp.Code)

	var inbound InboundResponse
	resp.Decode(t, &inbound)

	require.Len(t, inbound.Data, 1)
	assert.Equal(t, lot.ID, inbound.Data[0].ID)

	require.Len(t, inbound.DestinationPools, 1)
	assert.Equal(t, api.org.MainPool.ID, inbound.DestinationPools[0].ID)

	areas := inbound.DestinationAreas[lot.ID]
	require.Len(t, areas, 1)
	assert.Equal(t, api.org.StorageArea.ID, areas[0].ID)
}

func TestServer_AssignStockLot(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.org.Admin.ID

	assign := func(t *testing.T, userID, lotID, poolID, areaID string) *testutil.Response {
		return api.RequestAs(t, userID, testutil.Request{
			Method: http.MethodPost,
			Path:   "/stock-lots/" + lotID + "/assign",
			Body:   AssignRequest{PoolID: poolID, AreaID: areaID},
		})
	}

	t.Run("moves the lot to its owner pool", func(t *testing.T) {
		lot := receivedLot(t, api, "lot-assign-ok")

		resp := assign(t, admin, lot.ID, api.org.MainPool.ID, api.org.StorageArea.ID)
		require.Equal(t, http.StatusOK, resp.Code)

		got, found := api.repo.StockLot(lot.ID)
		require.True(t, found)
		assert.Equal(t, api.org.MainPool.ID, got.MPID)
		assert.Equal(t, api.org.VendorPool.ID, got.SPID)
		assert.Equal(t, api.org.MainPool.ID, got.CPID)
		assert.Equal(t, api.org.StorageArea.ID, got.AreaID)
		assert.Equal(t, models.RAGGreen, got.StockState)
		assert.Equal(t, models.RAGGreen, got.SupplyState)
		assert.Equal(t, models.RAGAmber, got.QualityState)
		assert.Equal(t, []string{"mark-1"}, got.MarkingIDs)
	})

	t.Run("already assigned lot conflicts", func(t *testing.T) {
		resp := assign(t, admin, "lot-assign-ok", api.org.MainPool.ID, api.org.StorageArea.ID)

		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, CodeConflict, resp.ErrorCode())
	})

	t.Run("non-owner pool is an invalid destination", func(t *testing.T) {
		lot := receivedLot(t, api, "lot-assign-vendor")

		resp := assign(t, admin, lot.ID, api.org.VendorPool.ID, api.org.StorageArea.ID)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		got, _ := api.repo.StockLot(lot.ID)
		assert.Equal(t, api.org.ReceivingPool.ID, got.MPID)
	})

	t.Run("receiving area is an invalid destination", func(t *testing.T) {
		lot := receivedLot(t, api, "lot-assign-dock")

		resp := assign(t, admin, lot.ID, api.org.MainPool.ID, api.org.DockArea.ID)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown pool is a validation error", func(t *testing.T) {
		lot := receivedLot(t, api, "lot-assign-nopool")

		resp := assign(t, admin, lot.ID, "pool-missing", api.org.StorageArea.ID)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown lot is 404", func(t *testing.T) {
		resp := assign(t, admin, "lot-missing", api.org.MainPool.ID, api.org.StorageArea.ID)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("grant constrained to the receiving pool allows", func(t *testing.T) {
		clerk := api.newClerk(t, "user-receiver",
			testutil.NewGrant("", rbac.AllocateStock).InPools(api.org.ReceivingPool.ID))
		lot := receivedLot(t, api, "lot-assign-clerk")

		resp := assign(t, clerk.ID, lot.ID, api.org.MainPool.ID, api.org.StorageArea.ID)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("grant constrained to another area denies", func(t *testing.T) {
		clerk := api.newClerk(t, "user-racker",
			testutil.NewGrant("", rbac.AllocateStock).InAreas(api.org.StorageArea.ID))
		lot := receivedLot(t, api, "lot-assign-racker")

		resp := assign(t, clerk.ID, lot.ID, api.org.MainPool.ID, api.org.StorageArea.ID)
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, CodePermissionDenied, resp.ErrorCode())
	})

	t.Run("missing body fields are rejected", func(t *testing.T) {
		lot := receivedLot(t, api, "lot-assign-empty")

		resp := api.RequestAs(t, admin, testutil.Request{
			Method: http.MethodPost,
			Path:   "/stock-lots/" + lot.ID + "/assign",
			Body:   map[string]string{"poolId": api.org.MainPool.ID},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestServer_ChangeStockLotState(t *testing.T) {
	api := newTestAPI(t, nil)
	lot := testutil.NewLot().WithID("lot-qc").
		InArea(api.org.StorageArea.ID).
		WithQualityState(models.RAGAmber).
		Create(t, api.repo)

	change := func(t *testing.T, userID string, body interface{}) *testutil.Response {
		return api.RequestAs(t, userID, testutil.Request{
			Method: http.MethodPatch,
			Path:   "/stock-lots/" + lot.ID + "/state",
			Body:   body,
		})
	}

	t.Run("sets one flag", func(t *testing.T) {
		resp := change(t, api.org.Admin.ID, StateChangeRequest{Field: stock.QualityStateField, State: models.RAGRed})
		require.Equal(t, http.StatusOK, resp.Code)

		got, _ := api.repo.StockLot(lot.ID)
		assert.Equal(t, models.RAGRed, got.QualityState)
		assert.Equal(t, models.RAGGreen, got.StockState)
		assert.Equal(t, models.RAGGreen, got.SupplyState)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		resp := change(t, api.org.Admin.ID, map[string]string{"field": "colour", "state": "Green"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, CodeValidationError, resp.ErrorCode())
	})

	t.Run("SSC-constrained grant follows the lot", func(t *testing.T) {
		ssc, err := api.repo.CreateSSC(t.Context(), models.StockSelectionCriteria{
			ID:     "ssc-racking-green",
			PoolID: api.org.MainPool.ID,
			AreaID: api.org.StorageArea.ID,
			Status: models.RAGGreen,
		})
		require.NoError(t, err)
		clerk := api.newClerk(t, "user-qc",
			testutil.NewGrant("", rbac.ChangeStockState).MatchingSSCs(ssc.ID))

		resp := change(t, clerk.ID, StateChangeRequest{Field: stock.StockStateField, State: models.RAGRed})
		require.Equal(t, http.StatusOK, resp.Code)

		// the lot no longer matches the criteria once its stock state is Red
		resp = change(t, clerk.ID, StateChangeRequest{Field: stock.StockStateField, State: models.RAGGreen})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestServer_ChangeStockLotState_PersistFailure(t *testing.T) {
	persister := testutil.NewMockPersister(t)
	persister.On("Persist", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	api := newTestAPIWithPersister(t, nil, persister)
	lot := testutil.NewLot().WithID("lot-unsaved").InArea(api.org.StorageArea.ID).Create(t, api.repo)

	persister.ExpectedCalls = nil
	persister.ExpectPersist(storage.KindStockLots, errors.New("disk full"))

	resp := api.RequestAs(t, api.org.Admin.ID, testutil.Request{
		Method: http.MethodPatch,
		Path:   "/stock-lots/" + lot.ID + "/state",
		Body:   StateChangeRequest{Field: stock.SupplyStateField, State: models.RAGAmber},
	})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, CodeInternalError, resp.ErrorCode())

	// the change is kept in memory even though it was not saved
	got, _ := api.repo.StockLot(lot.ID)
	assert.Equal(t, models.RAGAmber, got.SupplyState)
	persister.AssertExpectations(t)
}
