// sim/errors.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "errors"

var (
	ErrInvalidConfiguration = errors.New("Invalid configuration")
	ErrAirportNotOwned      = errors.New("Event dispatched to airport not owned by this process")
	ErrNonMonotonicTime     = errors.New("Event timestamp precedes current simulation time")
	ErrMalformedEvent       = errors.New("Malformed event tuple")
	ErrUnexpectedNullEvent  = errors.New("Null event outside the null-message executor")
)
