// Package errors defines domain errors for staff management
package errors

import "errors"

var (
	// ErrStaffNotFound is returned when a staff member does not exist
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrStaffExists is returned when the username is already taken
	ErrStaffExists = errors.New("staff member already exists")

	// ErrInvalidStaff is returned when required fields are missing or invalid
	ErrInvalidStaff = errors.New("invalid staff member")
)
