package domain

import "errors"

var (
	ErrUnknownDomain     = errors.New("domain: unknown domain")
	ErrUnknownMetric     = errors.New("domain: unknown metric")
	ErrEmptyParameterSet = errors.New("domain: empty parameter set")
	ErrInvalidRange      = errors.New("domain: parameter low bound above high bound")
)
