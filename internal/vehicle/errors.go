package vehicle

import "errors"

var (
	// ErrInvalidDescriptor is returned when a creation descriptor is malformed.
	// The host is never contacted in that case.
	ErrInvalidDescriptor = errors.New("invalid vehicle descriptor")

	// ErrHostCreationFailure is returned when the host runtime declined to create a vehicle.
	ErrHostCreationFailure = errors.New("host failed to create vehicle")

	// ErrDisposedEntity is returned by operations on a vehicle that has been disposed of.
	ErrDisposedEntity = errors.New("vehicle has been disposed")

	// ErrInvalidTrailer is returned when a coupling would break the trailer relationship.
	ErrInvalidTrailer = errors.New("invalid trailer")

	// ErrInvalidObserver is returned for nil observers or observers that cannot be compared.
	ErrInvalidObserver = errors.New("invalid observer")

	// ErrManagerDisposed is returned when creating vehicles after the manager was disposed.
	ErrManagerDisposed = errors.New("vehicle manager has been disposed")
)
