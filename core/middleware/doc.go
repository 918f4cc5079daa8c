// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or api_key query) for every
//     route outside the configured skip prefixes.
//   - rayid: a unique request id (RayID) for every incoming request, stored
//     in the context locals and echoed in the X-Ray-ID response header.
//
// These middleware components are registered globally in cmd/start.go.
package middleware
