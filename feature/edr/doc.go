// Package edr implements the endpoint-protection console adapter.
//
// The console authenticates every request with an API token header. The
// organization is resolved to exactly one console site by name, then the
// site's agents are listed with cursor pagination and each agent's
// computerName becomes a host of the inventory.
package edr
