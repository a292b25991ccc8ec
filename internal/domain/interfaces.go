package domain

import (
	"context"
	"time"

	"innbook/internal/models"
)

// Store is the transactional record store behind the admission engine.
// Implemented by internal/database; mocked in service tests.
type Store interface {
	CreateGuest(ctx context.Context, guest *models.Guest) error
	GetGuest(ctx context.Context, id int64) (*models.Guest, error)
	GuestExists(ctx context.Context, id int64) (bool, error)
	ListGuests(ctx context.Context, limit, offset int) ([]*models.Guest, error)

	CreateUnit(ctx context.Context, unit *models.Unit) error
	GetUnit(ctx context.Context, id int64) (*models.Unit, error)
	GetUnitByName(ctx context.Context, name string) (*models.Unit, error)
	UnitExists(ctx context.Context, id int64) (bool, error)
	ListUnits(ctx context.Context, limit, offset int) ([]*models.Unit, error)

	CreateReservationWithLock(ctx context.Context, r *models.Reservation) error
	UpdateReservationWithLock(ctx context.Context, id int64, patch models.ReservationPatch) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id int64) (*models.Reservation, bool, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context, limit, offset int) ([]*models.Reservation, error)
	ActiveReservationsForUnit(ctx context.Context, unitID int64) ([]*models.Reservation, error)
	FindConflict(ctx context.Context, unitID int64, checkIn, checkOut time.Time, excludeID int64) (*models.Reservation, error)
	ReservationsOverlappingRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Dispatcher queues a notification for asynchronous delivery. The
// admission engine's contract ends at a successful enqueue.
type Dispatcher interface {
	EnqueueNotification(ctx context.Context, taskType string, reservationID int64, payload interface{}) error
}

// Cache is the read-through cache over list/get results. Never consulted
// on the admission path.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Mailer delivers a rendered notification. Implemented over SMTP in
// production, faked in tests.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
