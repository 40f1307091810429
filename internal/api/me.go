package api

import (
	"net/http"
	"strings"

	"github.com/USSTM/wms-backend/internal/auth"
	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/samber/lo"
)

type MeResponse struct {
	User           rbac.User     `json:"user"`
	AllowedActions []rbac.Action `json:"allowedActions"`
}

type MyPermissionsResponse struct {
	Roles  []rbac.Role            `json:"roles"`
	Grants []rbac.PermissionGrant `json:"grants"`
}

type AuthzDecision struct {
	Action  rbac.Action `json:"action"`
	LotID   string      `json:"lotId,omitempty"`
	Allowed bool        `json:"allowed"`
}

// GetMe returns the acting user with the actions available to them without
// lot context, which drives navigation.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetCurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	allowed := s.authz.AllowedActions(user)
	if allowed == nil {
		allowed = []rbac.Action{}
	}
	writeJSON(w, http.StatusOK, MeResponse{User: *user, AllowedActions: allowed})
}

func (s *Server) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(w, r, rbac.ViewPermissions, rbac.Context{})
	if !ok {
		return
	}

	roles := lo.Filter(s.store.Roles(), func(role rbac.Role, _ int) bool {
		return user.HasRole(role.ID)
	})
	grants := s.authz.GrantsFor(user)
	if grants == nil {
		grants = []rbac.PermissionGrant{}
	}

	writeJSON(w, http.StatusOK, MyPermissionsResponse{Roles: roles, Grants: grants})
}

// CheckAuthorization answers whether the acting user may perform action,
// optionally on one lot. Unknown actions are rejected rather than denied.
func (s *Server) CheckAuthorization(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := auth.GetCurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	query := r.URL.Query()
	action, known := rbac.ParseAction(query.Get("action"))
	if !known {
		writeError(w, http.StatusBadRequest, ValidationErr("Unknown action", []ErrorDetail{
			{Field: "action", Message: "must be one of the action vocabulary"},
		}))
		return
	}

	decision := AuthzDecision{Action: action}
	actx := rbac.Context{}
	if id := strings.TrimSpace(query.Get("lotId")); id != "" {
		lot, found := s.store.StockLot(id)
		if !found {
			writeError(w, http.StatusNotFound, NotFound("Stock lot"))
			return
		}
		actx = rbac.ForLot(lot)
		decision.LotID = id
	}

	decision.Allowed = s.authz.Can(user, action, actx)
	logger.Debug("Authorization checked", "action", action, "lot_id", decision.LotID, "allowed", decision.Allowed)

	writeJSON(w, http.StatusOK, decision)
}
