// Package task runs background jobs on a fixed schedule.
// The serve command uses it to ingest news periodically while the
// operations endpoints are up.
package task
