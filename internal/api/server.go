package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/USSTM/wms-backend/internal/auth"
	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/stock"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	store      ReferenceStore
	authz      AuthorizerService
	classifier *stock.Classifier
	inbound    *stock.Inbound
}

func NewServer(store ReferenceStore, authz AuthorizerService, classifier *stock.Classifier, inbound *stock.Inbound) *Server {
	return &Server{
		store:      store,
		authz:      authz,
		classifier: classifier,
		inbound:    inbound,
	}
}

// authorize writes 401 or 403 and returns false unless the acting user may
// perform action in actx.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, action rbac.Action, actx rbac.Context) (*rbac.User, bool) {
	user, ok := auth.GetCurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return nil, false
	}
	if !s.authz.Can(user, action, actx) {
		middleware.GetLoggerFromContext(r.Context()).Info("Permission denied",
			"action", action,
			"lot_id", lotID(actx))
		writeError(w, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return nil, false
	}
	return user, true
}

func lotID(actx rbac.Context) string {
	if actx.StockLot == nil {
		return ""
	}
	return actx.StockLot.ID
}

// decodeBody reads a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", []ErrorDetail{
			{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)},
		}))
		return false
	}
	return true
}

// pathID is the {id} URL parameter.
func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

type dataResponse struct {
	Data interface{} `json:"data"`
}
