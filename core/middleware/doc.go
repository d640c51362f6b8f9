// Package middleware groups the Fiber middleware of the reconciliation server.
//
// # Components
//
//   - auth: rejects requests without the configured API key, read from the
//     X-API-Key header or a Bearer token. Paths such as /metrics can be skipped.
//   - rayid: tags every request with a ray id (X-Ray-ID), stored in the
//     "ray_id" local so logger.WithRayID can attach it to log lines.
//
// Register rayid first so authentication failures are traceable too.
package middleware
