package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innbook/internal/models"
)

func (db *DB) CreateUnit(ctx context.Context, unit *models.Unit) error {
	if unit.Capacity <= 0 {
		unit.Capacity = 1
	}

	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM units WHERE name = ?`, unit.Name).Scan(&exists)
	if err == nil {
		return ErrDuplicateUnitName
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check unit name: %w", err)
	}

	query := `INSERT INTO units (name, description, capacity, is_active, created_at)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, unit.Name, unit.Description, unit.Capacity, unit.IsActive, now)
	if err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	unit.ID = id
	unit.CreatedAt = now
	return nil
}

func (db *DB) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	query := `SELECT id, name, description, capacity, is_active, created_at FROM units WHERE id = ?`
	return db.queryUnit(ctx, query, id)
}

func (db *DB) GetUnitByName(ctx context.Context, name string) (*models.Unit, error) {
	query := `SELECT id, name, description, capacity, is_active, created_at FROM units WHERE name = ?`
	return db.queryUnit(ctx, query, name)
}

func (db *DB) queryUnit(ctx context.Context, query string, args ...interface{}) (*models.Unit, error) {
	var unit models.Unit
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&unit.ID, &unit.Name, &unit.Description, &unit.Capacity, &unit.IsActive, &unit.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &unit, nil
}

func (db *DB) UnitExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM units WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check unit existence: %w", err)
	}
	return true, nil
}

func (db *DB) ListUnits(ctx context.Context, limit, offset int) ([]*models.Unit, error) {
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	query := `SELECT id, name, description, capacity, is_active, created_at
              FROM units ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		u := &models.Unit{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Description, &u.Capacity, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
