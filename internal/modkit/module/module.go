// Package module defines the contract api.Mount composes and the port lookups
// modules use to reach each other during bootstrap
package module

import phttp "predictkit/internal/platform/net/http"

// Module is a unit of the API: it mounts routes and exposes ports
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
