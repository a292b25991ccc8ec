package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"innbook/internal/database"
	"innbook/internal/domain"
	"innbook/internal/events"
	"innbook/internal/metrics"
	"innbook/internal/models"

	"github.com/rs/zerolog"
)

// ReservationService runs the admission flow: validate, admit through the
// store's transactional check, then fan out the event, the notification
// and the cache invalidation. Side effects after commit are best-effort;
// a failed enqueue is logged, never surfaced to the caller.
type ReservationService struct {
	store      domain.Store
	eventBus   domain.EventPublisher
	dispatcher domain.Dispatcher
	cache      domain.Cache
	cacheTTL   time.Duration
	logger     *zerolog.Logger
}

func NewReservationService(store domain.Store, eventBus domain.EventPublisher, dispatcher domain.Dispatcher, cache domain.Cache, cacheTTL time.Duration, logger *zerolog.Logger) *ReservationService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultCacheTTL * time.Second
	}
	return &ReservationService{
		store:      store,
		eventBus:   eventBus,
		dispatcher: dispatcher,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *ReservationService) CreateReservation(ctx context.Context, guestID, unitID int64, checkIn, checkOut time.Time) (*models.Reservation, error) {
	checkIn = models.Day(checkIn)
	checkOut = models.Day(checkOut)
	if !checkIn.Before(checkOut) {
		metrics.IncAdmission("create", "invalid")
		return nil, database.ErrInvalidDateRange
	}

	reservation := &models.Reservation{
		GuestID:  guestID,
		UnitID:   unitID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}

	if err := s.store.CreateReservationWithLock(ctx, reservation); err != nil {
		metrics.IncAdmission("create", admissionOutcome(err))
		return nil, err
	}
	metrics.IncAdmission("create", "admitted")

	s.fanOut(ctx, events.EventReservationCreated, reservation)
	return reservation, nil
}

func (s *ReservationService) UpdateReservation(ctx context.Context, id int64, patch models.ReservationPatch) (*models.Reservation, error) {
	if patch.Empty() {
		return s.store.GetReservation(ctx, id)
	}

	updated, err := s.store.UpdateReservationWithLock(ctx, id, patch)
	if err != nil {
		metrics.IncAdmission("update", admissionOutcome(err))
		return nil, err
	}
	metrics.IncAdmission("update", "admitted")

	s.fanOut(ctx, events.EventReservationUpdated, updated)
	return updated, nil
}

// CancelReservation releases the reservation's interval. Cancelling an
// already-cancelled reservation succeeds without publishing anything, so
// a retried cancel never produces a duplicate notification.
func (s *ReservationService) CancelReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	reservation, changed, err := s.store.CancelReservation(ctx, id)
	if err != nil {
		metrics.IncAdmission("cancel", admissionOutcome(err))
		return nil, err
	}
	metrics.IncAdmission("cancel", "admitted")

	if changed {
		s.fanOut(ctx, events.EventReservationCancelled, reservation)
	}
	return reservation, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	key := fmt.Sprintf("reservations:get:%d", id)
	var cached models.Reservation
	if s.cacheRead(ctx, key, &cached) {
		return &cached, nil
	}

	reservation, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheWrite(ctx, key, reservation)
	return reservation, nil
}

func (s *ReservationService) ListReservations(ctx context.Context, limit, offset int) ([]*models.Reservation, error) {
	key := fmt.Sprintf("reservations:list:%d:%d", limit, offset)
	var cached []*models.Reservation
	if s.cacheRead(ctx, key, &cached) {
		return cached, nil
	}

	reservations, err := s.store.ListReservations(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	s.cacheWrite(ctx, key, reservations)
	return reservations, nil
}

// FindConflict reports the active reservation blocking the interval on the
// unit, or nil when the interval is free. Always answered from the store.
func (s *ReservationService) FindConflict(ctx context.Context, unitID int64, checkIn, checkOut time.Time) (*models.Reservation, error) {
	checkIn = models.Day(checkIn)
	checkOut = models.Day(checkOut)
	if !checkIn.Before(checkOut) {
		return nil, database.ErrInvalidDateRange
	}
	return s.store.FindConflict(ctx, unitID, checkIn, checkOut, 0)
}

func (s *ReservationService) ActiveReservationsForUnit(ctx context.Context, unitID int64) ([]*models.Reservation, error) {
	return s.store.ActiveReservationsForUnit(ctx, unitID)
}

func (s *ReservationService) ReservationsOverlappingRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	return s.store.ReservationsOverlappingRange(ctx, start, end)
}

// fanOut runs the post-commit side effects: snapshot, event, notification,
// cache invalidation.
func (s *ReservationService) fanOut(ctx context.Context, eventType string, reservation *models.Reservation) {
	payload := s.snapshotPayload(ctx, reservation)

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
			s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", reservation.ID).Msg("publish event error")
		}
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueNotification(ctx, eventType, reservation.ID, payload); err != nil {
			s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", reservation.ID).Msg("notification enqueue error")
		}
	}

	s.invalidate(ctx, "reservations:")
}

// snapshotPayload copies guest and unit details into the payload at
// transition time. Lookups that fail leave the fields empty rather than
// blocking the flow.
func (s *ReservationService) snapshotPayload(ctx context.Context, reservation *models.Reservation) events.ReservationEventPayload {
	payload := events.ReservationEventPayload{
		ReservationID: reservation.ID,
		GuestID:       reservation.GuestID,
		UnitID:        reservation.UnitID,
		CheckIn:       reservation.CheckIn,
		CheckOut:      reservation.CheckOut,
		Status:        reservation.Status,
	}

	if guest, err := s.store.GetGuest(ctx, reservation.GuestID); err == nil {
		payload.GuestName = guest.Name
		payload.GuestEmail = guest.Email
		payload.GuestPhone = guest.Phone
	} else {
		s.logger.Warn().Err(err).Int64("guest_id", reservation.GuestID).Msg("snapshot guest lookup failed")
	}

	if unit, err := s.store.GetUnit(ctx, reservation.UnitID); err == nil {
		payload.UnitName = unit.Name
	} else {
		s.logger.Warn().Err(err).Int64("unit_id", reservation.UnitID).Msg("snapshot unit lookup failed")
	}

	return payload
}

func (s *ReservationService) cacheRead(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read error")
		return false
	}
	if !ok {
		metrics.IncCache("miss")
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache decode error")
		return false
	}
	metrics.IncCache("hit")
	return true
}

func (s *ReservationService) cacheWrite(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write error")
	}
}

func (s *ReservationService) invalidate(ctx context.Context, prefix string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
		s.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation error")
	}
}

// admissionOutcome maps a store error to a metrics label.
func admissionOutcome(err error) string {
	switch {
	case errors.Is(err, database.ErrOverlappingReservation):
		return "overlap"
	case errors.Is(err, database.ErrInvalidDateRange):
		return "invalid"
	case errors.Is(err, database.ErrGuestNotFound),
		errors.Is(err, database.ErrUnitNotFound),
		errors.Is(err, database.ErrReservationNotFound):
		return "not_found"
	default:
		return "error"
	}
}
