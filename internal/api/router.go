package api

import (
	"net/http"

	"github.com/USSTM/wms-backend/internal/auth"
	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/middleware"
	"github.com/USSTM/wms-backend/internal/swagger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Authenticator *auth.Authenticator
	CORS          *config.CORSConfig
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewRouter mounts the API behind the OpenAPI request validator. Docs and
// metrics are served outside the validator.
func NewRouter(s *Server, opts RouterOptions) (http.Handler, error) {
	validator, err := swagger.NewValidator(opts.Authenticator.Authenticate, ValidationErrorHandler)
	if err != nil {
		return nil, err
	}

	r := chi.NewMux()
	r.Use(chimiddleware.Recoverer)
	if opts.CORS != nil {
		r.Use(middleware.NewCORSHandler(opts.CORS))
	}
	r.Use(opts.Authenticator.Identify)
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, NewError(CodeResourceNotFound, "Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, NewError(CodeValidationError, "Method not allowed"))
	})

	r.Get(swagger.SpecPath, swagger.ServeSpec)
	r.Get("/openapi.json", swagger.ServeSwaggerJSON)
	r.Get("/swagger/*", swagger.UI())
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validator)

		r.Get("/health", s.HealthCheck)
		r.Get("/ready", s.ReadinessCheck)

		r.Get("/me", s.GetMe)
		r.Get("/me/permissions", s.GetMyPermissions)
		r.Get("/authz/check", s.CheckAuthorization)
		r.Get("/dashboard/stock-summary", s.GetStockSummary)

		r.Route("/pools", func(r chi.Router) {
			r.Get("/", s.ListPools)
			r.Post("/", s.CreatePool)
			r.Get("/natures", s.ListPoolNatures)
			r.Put("/{id}", s.UpdatePool)
			r.Delete("/{id}", s.DeletePool)
		})
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.ListLocations)
			r.Post("/", s.CreateLocation)
			r.Put("/{id}", s.UpdateLocation)
			r.Delete("/{id}", s.DeleteLocation)
		})
		r.Route("/areas", func(r chi.Router) {
			r.Get("/", s.ListAreas)
			r.Post("/", s.CreateArea)
			r.Put("/{id}", s.UpdateArea)
			r.Delete("/{id}", s.DeleteArea)
		})
		r.Route("/ssc", func(r chi.Router) {
			r.Get("/", s.ListSSC)
			r.Post("/", s.CreateSSC)
			r.Put("/{id}", s.UpdateSSC)
			r.Delete("/{id}", s.DeleteSSC)
		})
		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", s.ListPermissions)
			r.Post("/", s.CreatePermission)
			r.Put("/{id}", s.UpdatePermission)
			r.Delete("/{id}", s.DeletePermission)
		})
		r.Get("/roles", s.ListRoles)
		r.Get("/users", s.ListUsers)

		r.Get("/stock-lots", s.ListStockLots)
		r.Get("/inbound", s.ListInbound)
		r.Post("/stock-lots/{id}/assign", s.AssignStockLot)
		r.Patch("/stock-lots/{id}/state", s.ChangeStockLotState)
	})

	return r, nil
}
