package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innbook/internal/models"
)

func (db *DB) CreateGuest(ctx context.Context, guest *models.Guest) error {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM guests WHERE email = ?`, guest.Email).Scan(&exists)
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check guest email: %w", err)
	}

	query := `INSERT INTO guests (name, email, phone, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, guest.Name, guest.Email, guest.Phone, now)
	if err != nil {
		return fmt.Errorf("failed to create guest: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	guest.ID = id
	guest.CreatedAt = now
	return nil
}

func (db *DB) GetGuest(ctx context.Context, id int64) (*models.Guest, error) {
	query := `SELECT id, name, email, phone, created_at FROM guests WHERE id = ?`

	var guest models.Guest
	err := db.QueryRowContext(ctx, query, id).Scan(
		&guest.ID, &guest.Name, &guest.Email, &guest.Phone, &guest.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return &guest, nil
}

func (db *DB) GuestExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM guests WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check guest existence: %w", err)
	}
	return true, nil
}

func (db *DB) ListGuests(ctx context.Context, limit, offset int) ([]*models.Guest, error) {
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	query := `SELECT id, name, email, phone, created_at FROM guests ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var guests []*models.Guest
	for rows.Next() {
		g := &models.Guest{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}
