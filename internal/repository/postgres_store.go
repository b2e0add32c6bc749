package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/financing-engine/internal/domain"
)

// postgresStore keeps the serialized financing collection in a single
// namespace-keyed row, mirroring the key-value contract of the store the
// source system wrote through.
type postgresStore struct {
	db        *sqlx.DB
	namespace string
}

func NewPostgresStore(db *sqlx.DB, namespace string) FinancingStore {
	return &postgresStore{db: db, namespace: namespace}
}

func (s *postgresStore) Load(ctx context.Context) ([]*domain.Financing, error) {
	query := `
		SELECT payload
		FROM financing_records
		WHERE namespace = $1
	`

	var payload []byte
	err := s.db.GetContext(ctx, &payload, query, s.namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return []*domain.Financing{}, nil
	}
	if err != nil {
		return nil, err
	}

	var financings []*domain.Financing
	if err := json.Unmarshal(payload, &financings); err != nil {
		return nil, err
	}
	return financings, nil
}

func (s *postgresStore) Save(ctx context.Context, financings []*domain.Financing) error {
	payload, err := json.Marshal(financings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO financing_records (namespace, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, s.namespace, payload, time.Now())
	return err
}
