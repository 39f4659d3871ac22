// Package context holds the request-scoped values shared between the HTTP
// middlewares, the services and the log handlers.
package context

type contextKey string
