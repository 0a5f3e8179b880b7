// Package store provides storage abstractions for the catalog server.
//
// Endpoints depend on these interfaces rather than on gorm directly so
// handlers can be tested with mocks. The gorm subpackage holds the
// implementations used in production.
//
// # Available Stores
//
//   - HealthStore: database connectivity and record counts for the status page
//   - UsersStore: accounts and profiles for login
//   - AssetsStore: create, update and delete of policy controlled assets
//   - ProgrammesStore: programmes and their administrators
//   - MembershipsStore: group memberships and project roles
//   - NodesStore: node versions and content blobs
//   - SamplesStore: sample types and samples
//   - PublicationsStore: publications, authors and exports
//
// # Usage
//
//	assets := gorm.NewAssetsStore(db)
//	asset, err := assets.Find("Investigation", 1)
//	if errors.Is(err, store.ErrNotFound) {
//	    // Handle not found
//	}
package store
