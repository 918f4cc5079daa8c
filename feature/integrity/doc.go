// Package integrity provides bucket health checks for the mirror.
//
// Unlike the 'mirror' package which converges content with the source,
// this package validates what a healthy mirror bucket should contain.
//
// # Checks Provided
//
//   - Structure: the mirror prefix and the feed folder exist.
//   - Documents: the generated index page and the feed document are present.
//   - Metadata: every mirrored object carries source-size and
//     source-last-modified metadata.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/documents : Runs documents check.
//   - GET /integrity/metadata : Runs metadata check.
package integrity
