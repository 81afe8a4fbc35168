package cluster

import "errors"

var (
	// ErrCapacityExceeded is returned when an allocation asks for more slots than available.
	ErrCapacityExceeded = errors.New("not enough slots available")
	// ErrOverRelease is returned when a release would bring the available count above the cluster size.
	ErrOverRelease = errors.New("release would exceed cluster size")
	// ErrUnsupportedPlatform is returned for operating systems the cluster doesn't provide.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnknownSlot         = errors.New("slot was not issued by this cluster")
	ErrDoubleRelease       = errors.New("slot was already released")
	ErrInvalidNodeSpec     = errors.New("invalid node spec")
	// ErrAccountClose is returned when a slot was reclaimed but its account failed to close.
	ErrAccountClose = errors.New("failed to close account")
	ErrClosed       = errors.New("cluster is closed")
)
