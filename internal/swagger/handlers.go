package swagger

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	middleware "github.com/oapi-codegen/nethttp-middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.yaml
var specYAML []byte

// SpecPath is where the raw document is served.
const SpecPath = "/openapi.yaml"

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	// request host is not matched against servers
	doc.Servers = nil
	return doc, nil
}

// ErrorWriter renders a validation failure with the given status.
type ErrorWriter func(w http.ResponseWriter, message string, statusCode int)

// NewValidator returns middleware validating requests against the embedded
// spec, authenticating the UserHeader scheme with authFunc.
func NewValidator(authFunc openapi3filter.AuthenticationFunc, onError ErrorWriter) (func(http.Handler) http.Handler, error) {
	spec, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	return middleware.OapiRequestValidatorWithOptions(spec, &middleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: authFunc,
		},
		ErrorHandler: middleware.ErrorHandler(onError),
	}), nil
}

// ServeSpec writes the embedded document as YAML.
func ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS off for docs
	_, _ = w.Write(specYAML)
}

// ServeSwaggerJSON writes the parsed spec as JSON.
func ServeSwaggerJSON(w http.ResponseWriter, r *http.Request) {
	spec, err := GetSwagger()
	if err != nil {
		http.Error(w, "Failed to load OpenAPI spec", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(spec)
}

// UI serves the Swagger UI pointed at SpecPath.
func UI() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL(SpecPath))
}
