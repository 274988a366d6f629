// Package domain contains the core business entities of the content pipeline:
// news events and the facts, categories and age ranges attached to them,
// the raw articles they are built from, and the monthly books they are
// compiled into.
//
// Entities here have no knowledge of storage, transport or the generative
// services that enrich them. NewsEvent is an immutable value; every change
// is expressed as a With... method that returns a new event.
package domain
