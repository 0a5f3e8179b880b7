// Package authz decides what a user may do with a catalog item.
//
// A decision combines the item's contributor and creators, its policy's
// sharing scope and access type, and the per person, project, institution
// and programme permissions attached to the policy. Decisions are cached
// per (user, item) in the auth_lookups table. Rows are rebuilt on read when
// missing and refreshed in bulk by the auth lookup queue worker.
package authz
