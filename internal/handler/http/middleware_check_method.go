// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"sort"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/go-chi/chi/v5"
)

// notFoundOnWrongMethod is registered as the router's MethodNotAllowed
// handler. A known path requested with an unregistered method is answered
// with 404, the same as an unknown path, so the record endpoints are only
// visible to POST callers.
func notFoundOnWrongMethod(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.FromRequest(r).Debug().
			Str("func", "notFoundOnWrongMethod").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Strs("allowed", allowedMethods(routes, r.URL.Path)).
			Msg("method not registered for route")

		http.NotFound(w, r)
	}
}

func allowedMethods(routes chi.Routes, path string) []string {
	var methods []string
	for _, route := range routes.Routes() {
		if route.Pattern != path {
			continue
		}
		for method := range route.Handlers {
			methods = append(methods, method)
		}
	}
	sort.Strings(methods)
	return methods
}
