// Package model defines the database models for SEEK.
//
// This package contains GORM models that map to the catalog schema in
// db/migrations.
//
// # Core Models
//
//   - User, Person: accounts and the people behind them
//   - Programme, Project, Institution, WorkGroup: the organisational tree
//   - GroupMembership: a person's place in a work group
//   - Policy, Permission: sharing settings of every asset
//   - Investigation, Study, Assay, AssayAsset: the ISA graph
//   - DataFile, Sop, Model, Publication, Node, Sample: assets
//   - ContentBlob: stored files, keyed by asset version
//   - AuthLookup: cached authorization decisions
//
// Validation runs in BeforeSave hooks and returns ValidationErrors.
package model
