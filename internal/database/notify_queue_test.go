package database

import (
	"context"
	"testing"
	"time"

	"innbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyQueueLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.NotifyTask{
		TaskType:      "reservation_created",
		ReservationID: 42,
		Payload:       `{"reservation_id":42}`,
		Status:        "pending",
	}
	require.NoError(t, db.CreateNotifyTask(ctx, task))
	assert.NotZero(t, task.ID)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "reservation_created", pending[0].TaskType)

	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "completed", "", nil))

	pending, err = db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNotifyQueueRetryScheduling(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.NotifyTask{
		TaskType:      "reservation_cancelled",
		ReservationID: 7,
		Payload:       `{}`,
		Status:        "pending",
	}
	require.NoError(t, db.CreateNotifyTask(ctx, task))

	// A retry scheduled in the future is not yet due.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", "smtp timeout", &future))

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Once due, it reappears with the retry count bumped.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", "smtp timeout", &past))

	pending, err = db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)
	assert.Equal(t, "smtp timeout", pending[0].LastError)
}

func TestNotifyQueueFailedTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.NotifyTask{
		TaskType:      "reservation_created",
		ReservationID: 1,
		Payload:       `{}`,
		Status:        "pending",
	}
	require.NoError(t, db.CreateNotifyTask(ctx, task))
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "failed", "mailbox unavailable", nil))

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "mailbox unavailable", failed[0].LastError)
	assert.NotNil(t, failed[0].ProcessedAt)
}
