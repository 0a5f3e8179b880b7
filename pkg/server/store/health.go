package store

import "context"

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies database connectivity
	CheckConnectivity(ctx context.Context) error

	// Counts returns the number of rows of each listed table
	Counts(ctx context.Context, tables []string) (map[string]int64, error)
}
