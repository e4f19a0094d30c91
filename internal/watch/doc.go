// Package watch keeps a resource directory's manifest current. A Session
// subscribes to filesystem changes under the root and feeds them to a
// Scheduler, which coalesces bursts into single regeneration runs, never
// overlaps two runs, and drains gracefully on shutdown.
package watch
