// Package rmm implements the RMM-platform inventory adapter.
//
// The adapter talks to the platform's REST API (Datto RMM v2 layout):
//  1. An OAuth2 password grant exchanges the API key/secret for a bearer token.
//  2. Account sites are listed page by page and every site whose name contains
//     the organization (case-insensitive) is selected.
//  3. The devices of each selected site are listed, following nextPageUrl until
//     the last page, and their hostnames are returned.
//
// A failure on any page after the first is reported as reconcile.ErrPartialResult;
// a partial page list is never returned as a complete inventory.
package rmm
