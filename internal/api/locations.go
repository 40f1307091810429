package api

import (
	"net/http"

	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
)

func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewLocations, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.Locations()})
}

func (s *Server) CreateLocation(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageLocations, rbac.Context{}); !ok {
		return
	}

	var location models.Location
	if !decodeBody(w, r, &location) {
		return
	}

	created, err := s.store.CreateLocation(r.Context(), location)
	if err != nil {
		writeStoreError(w, logger, err, "Location")
		return
	}

	logger.Info("Location created", "location_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageLocations, rbac.Context{}); !ok {
		return
	}

	var location models.Location
	if !decodeBody(w, r, &location) {
		return
	}
	location.ID = pathID(r)

	updated, err := s.store.UpdateLocation(r.Context(), location)
	if err != nil {
		writeStoreError(w, logger, err, "Location")
		return
	}

	logger.Info("Location updated", "location_id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageLocations, rbac.Context{}); !ok {
		return
	}

	id := pathID(r)
	if err := s.store.DeleteLocation(r.Context(), id); err != nil {
		writeStoreError(w, logger, err, "Location")
		return
	}

	logger.Info("Location deleted", "location_id", id)
	w.WriteHeader(http.StatusNoContent)
}
