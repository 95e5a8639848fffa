// Package httputil provides shared HTTP response helpers for handlers.
//
// Handlers write responses through these helpers instead of raw
// http.ResponseWriter calls so encoding failures are logged against the
// request logger.
package httputil
