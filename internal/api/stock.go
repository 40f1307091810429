package api

import (
	"errors"
	"net/http"

	"github.com/USSTM/wms-backend/internal/auth"
	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/stock"
)

type StockSummaryResponse struct {
	MyPools []string             `json:"myPools"`
	Data    []stock.DerivedState `json:"data"`
}

type StockLotsResponse struct {
	Data []models.StockLot `json:"data"`
	Meta PaginationMeta    `json:"meta"`
}

type InboundResponse struct {
	Data             []models.StockLot        `json:"data"`
	DestinationPools []models.Pool            `json:"destinationPools"`
	DestinationAreas map[string][]models.Area `json:"destinationAreas"`
}

type AssignRequest struct {
	PoolID string `json:"poolId"`
	AreaID string `json:"areaId"`
}

type StateChangeRequest struct {
	Field stock.StateField `json:"field"`
	State models.RAGState  `json:"state"`
}

// GetStockSummary returns the six classification metrics for the current
// snapshot of lots.
func (s *Server) GetStockSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewDashboard, rbac.Context{}); !ok {
		return
	}

	writeJSON(w, http.StatusOK, StockSummaryResponse{
		MyPools: s.classifier.MyPools(),
		Data:    s.classifier.Classify(s.store.StockLots()),
	})
}

func (s *Server) ListStockLots(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewDashboard, rbac.Context{}); !ok {
		return
	}

	limit, offset := parsePagination(queryInt(r, "limit"), queryInt(r, "offset"))
	lots := s.store.StockLots()

	writeJSON(w, http.StatusOK, StockLotsResponse{
		Data: page(lots, limit, offset),
		Meta: buildPaginationMeta(len(lots), int(limit), int(offset)),
	})
}

// ListInbound returns lots pending assignment together with the pools and
// per-lot areas they may be assigned to.
func (s *Server) ListInbound(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewDashboard, rbac.Context{}); !ok {
		return
	}

	pending := s.inbound.Pending(s.store.StockLots())
	areas := s.store.Areas()
	destAreas := make(map[string][]models.Area, len(pending))
	for _, lot := range pending {
		destAreas[lot.ID] = s.inbound.DestinationAreas(lot, areas)
	}

	writeJSON(w, http.StatusOK, InboundResponse{
		Data:             pending,
		DestinationPools: stock.OwnerPools(s.store.Pools()),
		DestinationAreas: destAreas,
	})
}

// lotForAction resolves the {id} lot and checks action against it. The user
// check comes first so unauthenticated callers cannot enumerate lot ids.
func (s *Server) lotForAction(w http.ResponseWriter, r *http.Request, action rbac.Action) (models.StockLot, bool) {
	if _, ok := auth.GetCurrentUser(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return models.StockLot{}, false
	}

	lot, found := s.store.StockLot(pathID(r))
	if !found {
		writeError(w, http.StatusNotFound, NotFound("Stock lot"))
		return models.StockLot{}, false
	}

	if _, ok := s.authorize(w, r, action, rbac.ForLot(lot)); !ok {
		return models.StockLot{}, false
	}
	return lot, true
}

func (s *Server) AssignStockLot(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	lot, ok := s.lotForAction(w, r, rbac.AllocateStock)
	if !ok {
		return
	}

	var req AssignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pool, found := s.store.Pool(req.PoolID)
	if !found {
		writeError(w, http.StatusBadRequest, ValidationErr("Unknown destination pool", []ErrorDetail{
			{Field: "poolId", Message: "pool does not exist"},
		}))
		return
	}
	area, found := s.store.Area(req.AreaID)
	if !found {
		writeError(w, http.StatusBadRequest, ValidationErr("Unknown destination area", []ErrorDetail{
			{Field: "areaId", Message: "area does not exist"},
		}))
		return
	}

	assigned, err := s.inbound.Assign(lot, pool, area)
	switch {
	case errors.Is(err, stock.ErrNotPendingAssignment):
		writeError(w, http.StatusConflict, ConflictErr("Stock lot is not pending assignment").
			WithContext(ErrorContext{"lot_id": lot.ID, "mp_id": lot.MPID}))
		return
	case errors.Is(err, stock.ErrInvalidDestination):
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid destination", []ErrorDetail{
			{Field: "destination", Message: err.Error()},
		}))
		return
	case err != nil:
		logger.Error("Failed to assign stock lot", "lot_id", lot.ID, "error", err)
		writeError(w, http.StatusInternalServerError, InternalError("An unexpected error occurred."))
		return
	}

	updated, err := s.store.UpdateStockLot(r.Context(), assigned)
	if err != nil {
		writeStoreError(w, logger, err, "Stock lot")
		return
	}

	logger.Info("Stock lot assigned",
		"lot_id", updated.ID,
		"pool_id", updated.MPID,
		"area_id", updated.AreaID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) ChangeStockLotState(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	lot, ok := s.lotForAction(w, r, rbac.ChangeStockState)
	if !ok {
		return
	}

	var req StateChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	changed, err := stock.ChangeState(lot, req.Field, req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid state change", []ErrorDetail{
			{Field: string(req.Field), Message: err.Error()},
		}))
		return
	}

	updated, err := s.store.UpdateStockLot(r.Context(), changed)
	if err != nil {
		writeStoreError(w, logger, err, "Stock lot")
		return
	}

	logger.Info("Stock lot state changed",
		"lot_id", updated.ID,
		"field", req.Field,
		"state", req.State)
	writeJSON(w, http.StatusOK, updated)
}
