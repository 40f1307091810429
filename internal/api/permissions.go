package api

import (
	"net/http"

	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/rbac"
)

func (s *Server) ListPermissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewPermissions, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.Permissions()})
}

func (s *Server) ListRoles(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewPermissions, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.Roles()})
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, rbac.ViewPermissions, rbac.Context{}); !ok {
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: s.store.Users()})
}

// CreatePermission adds a grant. The id is generated when the body has
// none.
func (s *Server) CreatePermission(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManagePermissions, rbac.Context{}); !ok {
		return
	}

	var grant rbac.PermissionGrant
	if !decodeBody(w, r, &grant) {
		return
	}

	created, err := s.store.CreateGrant(r.Context(), grant)
	if err != nil {
		writeStoreError(w, logger, err, "Permission")
		return
	}

	logger.Info("Permission granted",
		"grant_id", created.ID,
		"role_id", created.RoleID,
		"action", created.Action,
		"constrained", !created.Unconstrained())
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManagePermissions, rbac.Context{}); !ok {
		return
	}

	var grant rbac.PermissionGrant
	if !decodeBody(w, r, &grant) {
		return
	}
	grant.ID = pathID(r)

	updated, err := s.store.UpdateGrant(r.Context(), grant)
	if err != nil {
		writeStoreError(w, logger, err, "Permission")
		return
	}

	logger.Info("Permission updated", "grant_id", updated.ID, "action", updated.Action)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) DeletePermission(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	if _, ok := s.authorize(w, r, rbac.ManagePermissions, rbac.Context{}); !ok {
		return
	}

	id := pathID(r)
	if err := s.store.DeleteGrant(r.Context(), id); err != nil {
		writeStoreError(w, logger, err, "Permission")
		return
	}

	logger.Info("Permission revoked", "grant_id", id)
	w.WriteHeader(http.StatusNoContent)
}
