package models

import "time"

// Guest is the party requesting bookings. Immutable after creation;
// reservations reference it by id.
type Guest struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is the bookable physical resource.
type Unit struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Capacity    int64     `json:"capacity" yaml:"capacity"`
	IsActive    bool      `json:"is_active" yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reservation books one unit for one guest over [CheckIn, CheckOut).
// Never deleted; cancellation is a status transition.
type Reservation struct {
	ID        int64     `json:"id"`
	GuestID   int64     `json:"guest_id"`
	UnitID    int64     `json:"unit_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// Nights returns the length of the stay in whole days.
func (r *Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// ReservationPatch carries the fields of an in-place update. Nil fields
// keep the current value.
type ReservationPatch struct {
	GuestID  *int64     `json:"guest_id,omitempty"`
	UnitID   *int64     `json:"unit_id,omitempty"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ReservationPatch) Empty() bool {
	return p.GuestID == nil && p.UnitID == nil && p.CheckIn == nil && p.CheckOut == nil
}

// TouchesSchedule reports whether applying the patch can move the
// reservation to a different unit or interval.
func (p ReservationPatch) TouchesSchedule() bool {
	return p.UnitID != nil || p.CheckIn != nil || p.CheckOut != nil
}
