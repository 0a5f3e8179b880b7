// Package config provides configuration management for SEEK.
//
// Configuration is read from $SEEK_CONFIG_PATH/seek.yml and then overridden
// by SEEK_* environment variables. Every attribute remembers where its value
// came from so that `seekctl configuration show` can report it.
//
// # Key Configuration Options
//
//   - SEEK_SITE_BASE_HOST: Public base URL, used in API meta blocks
//   - SEEK_SEARCH_ENABLED: Turns the search endpoints on or off
//   - SEEK_SEARCH_INDEX_URL: Weaviate endpoint
//   - SEEK_BLOB_DRIVER: "file" or "s3"
//   - SEEK_REDIS_URL: Cache for fetched bibliographic metadata
//   - DATABASE_URL: Database connection
package config
