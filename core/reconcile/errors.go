package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a batch cannot produce a comparison
	// map at all, e.g. every record in a non-empty listing is unparseable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedRecord marks a single record whose key or fetch reference
	// cannot be derived. It never aborts a batch.
	ErrMalformedRecord = errors.New("malformed record")
)

// Stage identifies which capability an action failed in.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageStore    Stage = "store"
	StageCanceled Stage = "canceled"
)

// CapabilityError is a per-key failure of an injected capability.
type CapabilityError struct {
	Stage Stage
	Key   string
	Err   error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Key, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
