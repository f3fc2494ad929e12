package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"classhub/internal/observability"
)

// OpenAPIValidatorConfig configures contract validation of incoming
// requests against the published OpenAPI document.
type OpenAPIValidatorConfig struct {
	// Enabled controls whether validation is active.
	Enabled bool
	// SpecPath points at the OpenAPI specification file.
	SpecPath string
	// SkipPaths lists path prefixes exempt from validation, such as
	// health probes and the metrics endpoint.
	SkipPaths []string
}

// DefaultOpenAPIValidatorConfig enables validation outside production,
// where the contract check is a development aid rather than a hot-path
// cost.
func DefaultOpenAPIValidatorConfig() *OpenAPIValidatorConfig {
	env := os.Getenv("ENVIRONMENT")
	return &OpenAPIValidatorConfig{
		Enabled:  env != "production" && env != "prod",
		SpecPath: "api/openapi.yaml",
		SkipPaths: []string{
			"/health",
			"/health/ready",
			"/metrics",
		},
	}
}

// OpenAPIValidator rejects requests that do not match the OpenAPI
// contract with 400. A spec that fails to load or validate degrades to
// a pass-through middleware rather than taking the service down.
func OpenAPIValidator(config *OpenAPIValidatorConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultOpenAPIValidatorConfig()
	}
	if !config.Enabled {
		slog.Info("request contract validation disabled")
		return passthrough
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(config.SpecPath)
	if err != nil {
		slog.Error("failed to load OpenAPI spec",
			slog.String("path", config.SpecPath),
			slog.String("error", err.Error()))
		return passthrough
	}
	if err := doc.Validate(loader.Context); err != nil {
		slog.Error("OpenAPI spec is invalid", slog.String("error", err.Error()))
		return passthrough
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		slog.Error("failed to build OpenAPI route table", slog.String("error", err.Error()))
		return passthrough
	}

	slog.Info("request contract validation enabled", slog.String("spec_path", config.SpecPath))

	validationOptions := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipPath(r.URL.Path, config.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				observability.FromContext(r.Context()).Warn("request path not in OpenAPI spec",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				writeValidationError(w, fmt.Sprintf("Path not found in OpenAPI spec: %s %s", r.Method, r.URL.Path))
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    validationOptions,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				observability.FromContext(r.Context()).Warn("request failed contract validation",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				writeValidationError(w, fmt.Sprintf("Request validation failed: %s", err.Error()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if path == skipPath || strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

func writeValidationError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
