// Package isa walks the Investigation, Study, Assay graph.
//
// Investigations, studies and assays declare their place in the tree. Any
// other asset reaches the tree through assay_assets rows: its assays are the
// assays linking to it, its studies are the studies of those assays and its
// investigations are the investigations of those studies.
package isa
