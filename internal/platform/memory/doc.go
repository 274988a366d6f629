// Package memory provides in-memory implementations of the store interfaces.
// They back dry runs of the command line tool and serve as fakes in tests.
// Stored values are copied on the way in and out, so callers never share
// slices with the store.
package memory
