package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

// TrainingRepository stores the training payload as one JSONB row per key.
type TrainingRepository struct {
	db  *sql.DB
	key string
}

func NewTrainingRepository(db *sql.DB, key string) *TrainingRepository {
	return &TrainingRepository{db: db, key: key}
}

func (r *TrainingRepository) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
SELECT payload
FROM training_payloads
WHERE key = $1
`, r.key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrainingPayloadMissing
		}
		return nil, fmt.Errorf("select training payload: %w", err)
	}
	return payload, nil
}

func (r *TrainingRepository) Save(ctx context.Context, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO training_payloads (key, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`, r.key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert training payload: %w", err)
	}
	return nil
}
