package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRuleSourceUnavailable is returned when the rule source refuses or cannot serve requests
	ErrRuleSourceUnavailable = errors.New("rule source unavailable")

	// ErrRuleSourceFailure is returned when a rule source request fails
	ErrRuleSourceFailure = errors.New("rule source request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrAuditDisabled is returned when audit records are requested but auditing is off
	ErrAuditDisabled = errors.New("match audit is disabled")
)
