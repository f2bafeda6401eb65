package shared

import "context"

// Component is the contract every long-lived glacier component implements.
type Component interface {
	// GetType returns the component type identifier
	GetType() string

	// Shutdown gracefully shuts down the component
	Shutdown(ctx context.Context) error
}
