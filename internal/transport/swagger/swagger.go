// Package swagger serves the API document and checks it against the mounted routes.
package swagger

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}

// LoadSpec parses and validates the OpenAPI document at path.
func LoadSpec(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// Undocumented walks the router and returns "METHOD /path" for every route under prefix
// that the document does not describe.
func Undocumented(doc *openapi3.T, routes chi.Routes, prefix string) ([]string, error) {
	var missing []string
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = normalizeRoute(route)
		if !strings.HasPrefix(route, prefix) {
			return nil
		}

		item := doc.Paths.Find(route)
		if item == nil || item.GetOperation(method) == nil {
			missing = append(missing, method+" "+route)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(missing)
	return missing, nil
}

// normalizeRoute turns chi patterns such as "/api/users/{id}/" into "/api/users/{id}".
func normalizeRoute(route string) string {
	route = strings.ReplaceAll(route, "/*/", "/")
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	return route
}
