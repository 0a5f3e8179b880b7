// Package jobs runs the background queue workers on a cron schedule: the
// auth lookup update queue and the search reindexing queue.
package jobs
