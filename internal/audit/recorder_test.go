// internal/audit/recorder_test.go
package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-assessment/internal/assessment"
	apperrors "sentinel-assessment/internal/common/errors"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestRecord_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	recorder := NewPostgresRecorder(db)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return fixed }

	mock.ExpectExec(`INSERT INTO assessment_outcomes`).
		WithArgs(
			sqlmock.AnyArg(), // id (UUID)
			12,
			"HIGH",
			ChannelWeb,
			fixed,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := recorder.Record(context.Background(), Outcome{Total: 12, Tier: assessment.TierHigh, Channel: ChannelWeb})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	recorder := NewPostgresRecorder(db)

	mock.ExpectExec(`INSERT INTO assessment_outcomes`).
		WillReturnError(errors.New("connection reset"))

	id, err := recorder.Record(context.Background(), Outcome{Total: 3, Tier: assessment.TierLow, Channel: ChannelAPI})
	assert.Empty(t, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAuditWriteFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)
	recorder := NewPostgresRecorder(db)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS assessment_outcomes`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, recorder.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTierCounts(t *testing.T) {
	db, mock := setupMockDB(t)
	recorder := NewPostgresRecorder(db)

	mock.ExpectQuery(`SELECT risk_tier, COUNT\(\*\) FROM assessment_outcomes`).
		WillReturnRows(sqlmock.NewRows([]string{"risk_tier", "count"}).
			AddRow("LOW", 4).
			AddRow("HIGH", 1))

	counts, err := recorder.TierCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts[assessment.TierLow])
	assert.Equal(t, 1, counts[assessment.TierHigh])
	assert.Equal(t, 0, counts[assessment.TierMedium])
	assert.NoError(t, mock.ExpectationsWereMet())
}
