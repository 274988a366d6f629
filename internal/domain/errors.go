package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")
)

// Validation errors for NewsEvent and RawNewsArticle. Each wraps ErrValidation.
var (
	ErrEmptyEventID        = fmt.Errorf("%w: news event ID cannot be empty", ErrValidation)
	ErrEmptyEventTitle     = fmt.Errorf("%w: news event title cannot be empty", ErrValidation)
	ErrEmptyEventContent   = fmt.Errorf("%w: news event content cannot be empty", ErrValidation)
	ErrEmptyEventSourceURL = fmt.Errorf("%w: news event source URL cannot be empty", ErrValidation)
	ErrMissingPublishedAt  = fmt.Errorf("%w: published time cannot be zero", ErrValidation)
	ErrInvalidCategory     = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidAgeRange     = fmt.Errorf("%w: invalid age range", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid processing status", ErrValidation)
	ErrInvalidVerification = fmt.Errorf("%w: invalid verification status", ErrValidation)
)

// Validation errors for MonthlyBook.
var (
	ErrInvalidBookMonth = fmt.Errorf("%w: book month must be between 1 and 12", ErrValidation)
	ErrInvalidBookYear  = fmt.Errorf("%w: book year must be positive", ErrValidation)
)
