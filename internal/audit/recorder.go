// internal/audit/recorder.go
package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"sentinel-assessment/internal/assessment"
	apperrors "sentinel-assessment/internal/common/errors"
)

// Channel names where an assessment was scored.
const (
	ChannelWeb     = "web"
	ChannelAPI     = "api"
	ChannelCamunda = "camunda"
)

// Outcome is the anonymous record of one scored assessment. Answers are
// never stored, only the total and the tier.
type Outcome struct {
	Total   int
	Tier    assessment.RiskTier
	Channel string
}

// Recorder persists outcomes.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) (string, error)
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS assessment_outcomes (
		id         UUID PRIMARY KEY,
		risk_total SMALLINT NOT NULL CHECK (risk_total BETWEEN 0 AND 12),
		risk_tier  VARCHAR(10) NOT NULL,
		channel    VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`

// PostgresRecorder writes outcomes to the assessment_outcomes table.
type PostgresRecorder struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the outcomes table if it does not exist.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return apperrors.NewAuditWriteFailedError(err)
	}
	return nil
}

// Record inserts one outcome and returns its generated id.
func (r *PostgresRecorder) Record(ctx context.Context, outcome Outcome) (string, error) {
	id := uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assessment_outcomes (id, risk_total, risk_tier, channel, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, outcome.Total, string(outcome.Tier), outcome.Channel, r.now(),
	)
	if err != nil {
		return "", apperrors.NewAuditWriteFailedError(err)
	}

	return id, nil
}

// TierCounts returns how many outcomes were recorded per tier.
func (r *PostgresRecorder) TierCounts(ctx context.Context) (map[assessment.RiskTier]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT risk_tier, COUNT(*) FROM assessment_outcomes GROUP BY risk_tier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[assessment.RiskTier]int)
	for rows.Next() {
		var (
			tier  string
			count int
		)
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		counts[assessment.RiskTier(tier)] = count
	}
	return counts, rows.Err()
}
