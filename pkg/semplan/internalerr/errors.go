package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Pipeline failures
	ErrEmptyKeyword              = errors.New("empty keyword")
	ErrInvalidConstraints        = errors.New("invalid business constraints")
	ErrEmptySourceSet            = errors.New("no keyword candidates from any source")
	ErrMalformedBudgetAllocation = errors.New("malformed budget allocation")
)
