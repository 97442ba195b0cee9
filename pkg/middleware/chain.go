// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package middleware

import "net/http"

// Middleware wraps an http.Handler with extra behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares into one. The first argument ends up outermost,
// so it runs first on the way in and last on the way out.
func Chain(middlewares ...Middleware) Middleware {
	return func(handler http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// RouteBuilder registers routes on a ServeMux, wrapping each handler in the
// accumulated middleware chain.
type RouteBuilder struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouteBuilder starts an empty builder over mux.
func NewRouteBuilder(mux *http.ServeMux) *RouteBuilder {
	return &RouteBuilder{mux: mux}
}

// With returns a builder extended with the given middlewares. The receiver
// is left untouched so chains can fork.
func (rb *RouteBuilder) With(middlewares ...Middleware) *RouteBuilder {
	combined := make([]Middleware, 0, len(rb.middlewares)+len(middlewares))
	combined = append(combined, rb.middlewares...)
	combined = append(combined, middlewares...)
	return &RouteBuilder{mux: rb.mux, middlewares: combined}
}

// Handle registers handler under pattern, wrapped in the chain.
func (rb *RouteBuilder) Handle(pattern string, handler http.Handler) {
	if len(rb.middlewares) > 0 {
		handler = Chain(rb.middlewares...)(handler)
	}
	rb.mux.Handle(pattern, handler)
}

// HandleFunc is Handle for plain handler functions.
func (rb *RouteBuilder) HandleFunc(pattern string, handlerFunc http.HandlerFunc) {
	rb.Handle(pattern, handlerFunc)
}

// Group is an alias for With kept for call sites that read better as route
// grouping.
func (rb *RouteBuilder) Group(middlewares ...Middleware) *RouteBuilder {
	return rb.With(middlewares...)
}
