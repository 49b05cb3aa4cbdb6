package model

import "errors"

var (
	ErrRatesUnavailable  = errors.New("rate provider unavailable")
	ErrMalformedResponse = errors.New("malformed rate provider response")
	ErrStoreCorrupt      = errors.New("stored settings are corrupt")
)
