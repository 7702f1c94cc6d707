package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sharktrack/sharktrack-backend-go/internal/database"
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// FeatureRepository stores raw source features grouped into named datasets.
// Only source features are stored, never derived aggregates.
type FeatureRepository struct {
	db *sql.DB
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *sql.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// ReplaceDataset replaces every feature of the named dataset.
// Features are stored exactly as given, malformed ones included.
func (r *FeatureRepository) ReplaceDataset(ctx context.Context, name string, features []json.RawMessage) (int, error) {
	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM features WHERE dataset = ?", name); err != nil {
			return fmt.Errorf("failed to clear dataset: %w", err)
		}

		upsert := `
			INSERT INTO datasets (name, feature_count, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET
				feature_count = excluded.feature_count,
				updated_at = CURRENT_TIMESTAMP
		`
		if _, err := tx.ExecContext(ctx, upsert, name, len(features)); err != nil {
			return fmt.Errorf("failed to upsert dataset: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO features (dataset, seq, feature_json) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, raw := range features {
			if _, err := stmt.ExecContext(ctx, name, i, string(raw)); err != nil {
				return fmt.Errorf("failed to insert feature %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(features), nil
}

// LoadCollection returns the stored features of a dataset, in insertion order,
// as an encoded feature collection
func (r *FeatureRepository) LoadCollection(ctx context.Context, name string) ([]byte, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets WHERE name = ?", name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dataset: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatasetNotFound, name)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT feature_json FROM features WHERE dataset = ? ORDER BY seq", name)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	fc := storedCollection{Type: "FeatureCollection", Features: make([]json.RawMessage, 0)}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		fc.Features = append(fc.Features, json.RawMessage(raw))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return json.Marshal(fc)
}

type storedCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// ListDatasets returns every stored dataset, most recently updated first
func (r *FeatureRepository) ListDatasets(ctx context.Context) ([]models.DatasetInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, feature_count, created_at, updated_at
		FROM datasets
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]models.DatasetInfo, 0)
	for rows.Next() {
		var info models.DatasetInfo
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&info.Name, &info.FeatureCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		info.CreatedAt = createdAt
		info.UpdatedAt = updatedAt
		datasets = append(datasets, info)
	}

	return datasets, rows.Err()
}
