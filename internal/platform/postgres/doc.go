// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution and the mapping between domain entities and
// database records. List-valued fields of a news event are stored as JSONB
// columns; filtered listings are built with squirrel.
package postgres
