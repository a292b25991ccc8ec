package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innbook/internal/models"
)

const reservationColumns = `id, guest_id, unit_id, date(check_in), date(check_out), status, created_at, updated_at, version`

// The single authoritative overlap condition: half-open intervals [a,b)
// and [c,d) intersect iff a < d AND c < b. Adjacent stays (checkout day ==
// next check-in day) do not conflict. excludeID = 0 matches no row.
const conflictQuery = `SELECT ` + reservationColumns + `
              FROM reservations
              WHERE unit_id = ?
                AND status = ?
                AND date(check_in) < date(?)
                AND date(check_out) > date(?)
                AND id != ?
              LIMIT 1`

// querier is satisfied by both *DB and *sql.Tx so the conflict check can
// run standalone or inside an admission transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var r models.Reservation
	var checkIn, checkOut string
	err := row.Scan(
		&r.ID, &r.GuestID, &r.UnitID, &checkIn, &checkOut,
		&r.Status, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}

	if r.CheckIn, err = models.ParseDate(checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check_in %s: %w", checkIn, err)
	}
	if r.CheckOut, err = models.ParseDate(checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check_out %s: %w", checkOut, err)
	}
	return &r, nil
}

func findConflict(ctx context.Context, q querier, unitID int64, checkIn, checkOut time.Time, excludeID int64) (*models.Reservation, error) {
	row := q.QueryRowContext(ctx, conflictQuery,
		unitID, models.StatusActive,
		checkOut.Format(models.DateLayout),
		checkIn.Format(models.DateLayout),
		excludeID,
	)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conflict: %w", err)
	}
	return res, nil
}

// FindConflict returns the first active reservation on the unit whose
// interval overlaps the candidate, or nil. Pass excludeID > 0 when
// re-validating an in-place update so the record does not conflict with
// itself.
func (db *DB) FindConflict(ctx context.Context, unitID int64, checkIn, checkOut time.Time, excludeID int64) (*models.Reservation, error) {
	return findConflict(ctx, db, unitID, checkIn, checkOut, excludeID)
}

func existsTx(ctx context.Context, tx *sql.Tx, table string, id int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return true, nil
}

// CreateReservationWithLock admits a new reservation. Existence checks,
// the conflict check, and the insert run in one transaction so two
// concurrent overlapping requests for the same unit cannot both commit.
func (db *DB) CreateReservationWithLock(ctx context.Context, r *models.Reservation) error {
	if !r.CheckIn.Before(r.CheckOut) {
		return ErrInvalidDateRange
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ok, err := existsTx(ctx, tx, "units", r.UnitID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnitNotFound
	}

	ok, err = existsTx(ctx, tx, "guests", r.GuestID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGuestNotFound
	}

	conflict, err := findConflict(ctx, tx, r.UnitID, r.CheckIn, r.CheckOut, 0)
	if err != nil {
		return err
	}
	if conflict != nil {
		return ErrOverlappingReservation
	}

	query := `INSERT INTO reservations (guest_id, unit_id, check_in, check_out, status, created_at, updated_at, version)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		r.GuestID,
		r.UnitID,
		r.CheckIn.Format(models.DateLayout),
		r.CheckOut.Format(models.DateLayout),
		models.StatusActive,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	r.ID = id
	r.Status = models.StatusActive
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1
	return nil
}

// UpdateReservationWithLock overlays the patch onto the stored record and
// applies it atomically. The conflict check is re-run against the
// effective unit and interval, excluding the reservation itself, whenever
// the patch moves the schedule. No field is written on failure.
func (db *DB) UpdateReservationWithLock(ctx context.Context, id int64, patch models.ReservationPatch) (*models.Reservation, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	effective := *current
	if patch.GuestID != nil {
		effective.GuestID = *patch.GuestID
	}
	if patch.UnitID != nil {
		effective.UnitID = *patch.UnitID
	}
	if patch.CheckIn != nil {
		effective.CheckIn = models.Day(*patch.CheckIn)
	}
	if patch.CheckOut != nil {
		effective.CheckOut = models.Day(*patch.CheckOut)
	}

	if !effective.CheckIn.Before(effective.CheckOut) {
		return nil, ErrInvalidDateRange
	}

	if patch.UnitID != nil && effective.UnitID != current.UnitID {
		ok, err := existsTx(ctx, tx, "units", effective.UnitID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnitNotFound
		}
	}

	if patch.GuestID != nil && effective.GuestID != current.GuestID {
		ok, err := existsTx(ctx, tx, "guests", effective.GuestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrGuestNotFound
		}
	}

	scheduleMoved := effective.UnitID != current.UnitID ||
		!effective.CheckIn.Equal(current.CheckIn) ||
		!effective.CheckOut.Equal(current.CheckOut)
	if scheduleMoved {
		conflict, err := findConflict(ctx, tx, effective.UnitID, effective.CheckIn, effective.CheckOut, id)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, ErrOverlappingReservation
		}
	}

	now := time.Now()
	query := `UPDATE reservations
              SET guest_id = ?, unit_id = ?, check_in = ?, check_out = ?, updated_at = ?, version = version + 1
              WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query,
		effective.GuestID,
		effective.UnitID,
		effective.CheckIn.Format(models.DateLayout),
		effective.CheckOut.Format(models.DateLayout),
		now,
		id,
	); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation update: %w", err)
	}

	effective.UpdatedAt = now
	effective.Version = current.Version + 1
	return &effective, nil
}

// CancelReservation sets status = cancelled. Idempotent: cancelling an
// already-cancelled reservation reports changed = false and no error.
func (db *DB) CancelReservation(ctx context.Context, id int64) (*models.Reservation, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrReservationNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load reservation: %w", err)
	}

	if current.Status == models.StatusCancelled {
		return current, false, tx.Commit()
	}

	now := time.Now()
	query := `UPDATE reservations SET status = ?, updated_at = ?, version = version + 1 WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, models.StatusCancelled, now, id); err != nil {
		return nil, false, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	current.Status = models.StatusCancelled
	current.UpdatedAt = now
	current.Version++
	return current, true, nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

func (db *DB) ListReservations(ctx context.Context, limit, offset int) ([]*models.Reservation, error) {
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY id LIMIT ? OFFSET ?`
	return db.queryReservations(ctx, query, limit, offset)
}

// ActiveReservationsForUnit returns the unit's ledger: every active
// reservation, ordered by check-in.
func (db *DB) ActiveReservationsForUnit(ctx context.Context, unitID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations
              WHERE unit_id = ? AND status = ?
              ORDER BY date(check_in)`
	return db.queryReservations(ctx, query, unitID, models.StatusActive)
}

// ReservationsOverlappingRange returns active reservations whose stay
// intersects [start, end), across all units. Used by the occupancy export.
func (db *DB) ReservationsOverlappingRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations
              WHERE status = ? AND date(check_in) < date(?) AND date(check_out) > date(?)
              ORDER BY unit_id, date(check_in)`
	return db.queryReservations(ctx, query, models.StatusActive,
		end.Format(models.DateLayout), start.Format(models.DateLayout))
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...interface{}) ([]*models.Reservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}
