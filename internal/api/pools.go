package api

import (
	"net/http"

	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/samber/lo"
)

type PoolNatureResponse struct {
	Nature   models.PoolNature    `json:"nature"`
	Subtypes []models.PoolSubtype `json:"subtypes"`
	IsOwner  bool                 `json:"isOwner"`
}

func (s *Server) ListPools(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewPools, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.Pools()})
}

// ListPoolNatures returns the nature catalogue with the subtypes each allows.
func (s *Server) ListPoolNatures(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewPools, rbac.Context{}); !ok {
		return
	}

	natures := lo.Map(models.Natures(), func(n models.PoolNature, _ int) PoolNatureResponse {
		return PoolNatureResponse{Nature: n, Subtypes: n.Subtypes(), IsOwner: n.IsOwner()}
	})
	writeJSON(w, http.StatusOK, dataResponse{Data: natures})
}

func (s *Server) CreatePool(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManagePools, rbac.Context{}); !ok {
		return
	}

	var pool models.Pool
	if !decodeBody(w, r, &pool) {
		return
	}

	created, err := s.store.CreatePool(r.Context(), pool)
	if err != nil {
		writeStoreError(w, logger, err, "Pool")
		return
	}

	logger.Info("Pool created", "pool_id", created.ID, "nature", created.Nature)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdatePool(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManagePools, rbac.Context{}); !ok {
		return
	}

	var pool models.Pool
	if !decodeBody(w, r, &pool) {
		return
	}
	pool.ID = pathID(r)

	updated, err := s.store.UpdatePool(r.Context(), pool)
	if err != nil {
		writeStoreError(w, logger, err, "Pool")
		return
	}

	logger.Info("Pool updated", "pool_id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

// DeletePool removes a pool; its direct children become top-level pools.
func (s *Server) DeletePool(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManagePools, rbac.Context{}); !ok {
		return
	}

	id := pathID(r)
	if err := s.store.DeletePool(r.Context(), id); err != nil {
		writeStoreError(w, logger, err, "Pool")
		return
	}

	logger.Info("Pool deleted", "pool_id", id)
	w.WriteHeader(http.StatusNoContent)
}
