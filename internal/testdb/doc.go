// Package testdb provides utilities for PostgreSQL integration tests: opening
// the test database named by the environment and isolating each test in a
// transaction that is always rolled back.
package testdb
