// Package testutils provides fixtures shared by the tests of several packages.
// Everything here builds valid domain values; nothing touches external services.
package testutils
