package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var rawSpec []byte

// RawSpec returns the embedded OpenAPI document.
func RawSpec() []byte {
	return rawSpec
}

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// RequestValidator rejects requests that do not match the OpenAPI document
// with 400. Routes the document does not describe pass through untouched.
func RequestValidator(doc *openapi3.T, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	// Match on paths only, whatever host the server is reached on.
	doc.Servers = nil
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Debug("request rejected", "path", r.URL.Path, "err", err)
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
