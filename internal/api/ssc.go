package api

import (
	"net/http"

	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
)

func (s *Server) ListSSC(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewSSC, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.StockSelectionCriteria()})
}

func (s *Server) CreateSSC(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageSSC, rbac.Context{}); !ok {
		return
	}

	var ssc models.StockSelectionCriteria
	if !decodeBody(w, r, &ssc) {
		return
	}

	created, err := s.store.CreateSSC(r.Context(), ssc)
	if err != nil {
		writeStoreError(w, logger, err, "Stock selection criteria")
		return
	}

	logger.Info("Stock selection criteria created", "ssc_id", created.ID, "classes", created.ClassList())
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdateSSC(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageSSC, rbac.Context{}); !ok {
		return
	}

	var ssc models.StockSelectionCriteria
	if !decodeBody(w, r, &ssc) {
		return
	}
	ssc.ID = pathID(r)

	updated, err := s.store.UpdateSSC(r.Context(), ssc)
	if err != nil {
		writeStoreError(w, logger, err, "Stock selection criteria")
		return
	}

	logger.Info("Stock selection criteria updated", "ssc_id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteSSC removes a criteria record. Grants still naming it simply stop
// matching.
func (s *Server) DeleteSSC(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManageSSC, rbac.Context{}); !ok {
		return
	}

	id := pathID(r)
	if err := s.store.DeleteSSC(r.Context(), id); err != nil {
		writeStoreError(w, logger, err, "Stock selection criteria")
		return
	}

	logger.Info("Stock selection criteria deleted", "ssc_id", id)
	w.WriteHeader(http.StatusNoContent)
}
