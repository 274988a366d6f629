// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Every key can be set through a BOOKOFMONTH_ prefixed environment variable
// whose name is the upper-cased key path with dots replaced by underscores.
package config
