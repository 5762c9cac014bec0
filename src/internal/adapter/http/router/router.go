package router

import "net/http"

type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, middleware func(http.Handler) http.Handler)
}

// New mounts the API docs and every non-nil registrar on one mux. The
// middleware wraps API routes only.
func New(middleware func(http.Handler) http.Handler, registrars ...RouteRegistrar) *http.ServeMux {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)

	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(mux, middleware)
		}
	}

	return mux
}
