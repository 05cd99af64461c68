// Package shared holds the contracts of long-lived server components
package shared

import "context"

// Component is a long-lived part of metacat that owns resources, such as
// an open metastore connection, and releases them on Shutdown
type Component interface {
	// GetType names the kind of component, e.g. "catalog"
	GetType() string

	Shutdown(ctx context.Context) error
}
