package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, the backend client and
// the confirmation host return these (optionally wrapped) so callers can
// translate them into domain errors.
//
// - ErrNotFound: record does not exist in a store
// - ErrUnavailable: a dependency is down or its circuit is open
// - ErrInvalidResponse: a dependency answered with something we cannot relay
// - ErrBusy: a single-slot resource is already claimed
// - ErrClosed: the resource has been torn down
var (
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("unavailable")
	ErrInvalidResponse = errors.New("invalid response")
	ErrBusy            = errors.New("busy")
	ErrClosed          = errors.New("closed")
)
