package api

import (
	"net/http"

	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
)

func (s *Server) ListAreas(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewAreas, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.Areas()})
}

func (s *Server) CreateArea(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageAreas, rbac.Context{}); !ok {
		return
	}

	var area models.Area
	if !decodeBody(w, r, &area) {
		return
	}

	created, err := s.store.CreateArea(r.Context(), area)
	if err != nil {
		writeStoreError(w, logger, err, "Area")
		return
	}

	logger.Info("Area created", "area_id", created.ID, "location_id", created.LocationID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdateArea(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageAreas, rbac.Context{}); !ok {
		return
	}

	var area models.Area
	if !decodeBody(w, r, &area) {
		return
	}
	area.ID = pathID(r)

	updated, err := s.store.UpdateArea(r.Context(), area)
	if err != nil {
		writeStoreError(w, logger, err, "Area")
		return
	}

	logger.Info("Area updated", "area_id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteArea(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageAreas, rbac.Context{}); !ok {
		return
	}

	id := pathID(r)
	if err := s.store.DeleteArea(r.Context(), id); err != nil {
		writeStoreError(w, logger, err, "Area")
		return
	}

	logger.Info("Area deleted", "area_id", id)
	w.WriteHeader(http.StatusNoContent)
}
