// Command seekctl runs the SEEK research catalog server and its
// maintenance tasks.
//
// # Quick Start
//
//	# Create or upgrade the schema
//	seekctl db migrate
//
//	# Load institutions, projects and people
//	seekctl seed load seed.yml
//
//	# Create an administrator
//	seekctl admin create --login admin --email admin@example.org
//
//	# Start the server
//	seekctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - SEEK_SESSION_SECRET: key signing session tokens
//   - SEEK_CONFIG_PATH: directory holding seek.yml (default /etc/seek/config)
//   - SEEK_LOG_LEVEL: log level (debug, info, warn, error)
//   - SEEK_AUDIT_DATABASE_URL: audit database, read by seekctl audit
//   - SEEK_<ATTRIBUTE>: overrides any attribute of seek.yml
//   - PORT: server port (default: 3000)
package main
