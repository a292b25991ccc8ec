package service

import "errors"

// ErrInvalidInput marks request validation failures so transport layers
// can distinguish them from storage errors.
var ErrInvalidInput = errors.New("invalid input")
