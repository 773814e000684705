package models

import "errors"

// Custom errors
var (
	ErrMalformedRow  = errors.New("malformed ledger row")
	ErrInvalidPolicy = errors.New("invalid policy")
	ErrStoreClosed   = errors.New("ledger store is closed")
)
