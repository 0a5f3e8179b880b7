// Package server provides the HTTP server of the catalog.
//
// The Server struct holds the router, the database connection and every
// store and service the endpoints need. Stores are interfaces from the
// store subpackage so endpoints can be tested with mocks.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db, "0.0.0.0", "3000")
//	srv.Searcher = searcher
//	srv.Fetcher = fetcher
//	srv.Blobs = blobs
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Middleware
//
// Every route runs the session middleware, which resolves a Bearer token
// into the current user, and then the per client rate limiter. Requests
// without a token are anonymous.
//
// # Endpoints
//
// Routes are registered by the endpoints subpackage:
//
//   - /search - Search across every searchable type
//   - /programmes - Programmes and their activation
//   - /group_memberships/{id} - Membership updates
//   - /nodes - Versioned nodes and their content
//   - /sample_types, /samples - Sample types and samples
//   - /investigations, /studies, /assays - The ISA tree as JSON:API
//   - /publications - Publications, metadata fetch and exports
//   - /session - Login
//   - /, /health, /metrics - Status
package server
