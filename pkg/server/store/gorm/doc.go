// Package gorm implements the store interfaces of pkg/server/store on the
// catalog's PostgreSQL schema.
package gorm
