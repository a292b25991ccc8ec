package models

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"

	// StatusPending is reserved for a future two-phase admission flow.
	// No transition produces it today.
	StatusPending = "pending"
)

// DateLayout is the storage and wire format for calendar dates.
// Reservations carry no time-of-day component.
const DateLayout = "2006-01-02"

const (
	// NotifyQueueSize bounds the worker's in-memory fallback queue.
	NotifyQueueSize = 128

	// DefaultCacheTTL is the read-through cache lifetime for list/get results.
	DefaultCacheTTL = 60 // seconds

	// DefaultListLimit caps unbounded list queries.
	DefaultListLimit = 100
)
