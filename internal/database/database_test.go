package database

import (
	"context"
	"os"
	"testing"
	"time"

	"innbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedGuest(t *testing.T, db *DB, name, email string) int64 {
	t.Helper()
	guest := &models.Guest{Name: name, Email: email, Phone: "+15550100"}
	require.NoError(t, db.CreateGuest(context.Background(), guest))
	return guest.ID
}

func seedUnit(t *testing.T, db *DB, name string) int64 {
	t.Helper()
	unit := &models.Unit{Name: name, Description: "test unit", Capacity: 2, IsActive: true}
	require.NoError(t, db.CreateUnit(context.Background(), unit))
	return unit.ID
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func countReservations(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM reservations`).Scan(&n))
	return n
}
