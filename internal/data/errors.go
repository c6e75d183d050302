package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Admin repository sentinels.
	ErrAdminNotFound            = errors.New("admin not found")
	ErrAdminEmailExists         = errors.New("admin email already exists")
	ErrAdminAlreadyBootstrapped = errors.New("bootstrap admin already exists")

	// Intake repository sentinels.
	ErrBookingReferenceExists = errors.New("booking reference already exists")
	ErrSubscriberExists       = errors.New("subscriber already exists")

	// Yacht repository sentinels.
	ErrYachtSlugExists = errors.New("yacht slug already exists")
	ErrYachtIDExists   = errors.New("yacht id already exists")
)
