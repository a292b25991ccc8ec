package database

import "errors"

// Admission failures. All are caller-input errors: the HTTP layer maps
// each to a distinct response, so they must stay distinguishable with
// errors.Is.
var (
	ErrInvalidDateRange       = errors.New("check-in date must be before check-out date")
	ErrGuestNotFound          = errors.New("guest not found")
	ErrUnitNotFound           = errors.New("unit not found")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrOverlappingReservation = errors.New("unit is already reserved for these dates")
	ErrDuplicateEmail         = errors.New("guest email already registered")
	ErrDuplicateUnitName      = errors.New("unit name already exists")
)
