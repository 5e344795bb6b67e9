package pgstate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

// BaselineRepository is the durable "last pushed" state, one row per
// (marketplace, sku). Adapters own it: the reconciliation core only ever
// sees its contents through FetchBaseline.
type BaselineRepository struct {
	db *sql.DB
}

func NewBaselineRepository(db *sql.DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// Migrate creates the schema this repository needs. Idempotent.
func (r *BaselineRepository) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS seller`,
		`CREATE TABLE IF NOT EXISTS seller.baseline (
			marketplace TEXT        NOT NULL,
			sku         TEXT        NOT NULL,
			stock       INTEGER     NOT NULL,
			price       NUMERIC(12,2) NOT NULL,
			pushed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (marketplace, sku)
		)`,
	}
	for _, statement := range statements {
		if _, err := r.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to migrate baseline schema: %w", err)
		}
	}
	return nil
}

func (r *BaselineRepository) Load(ctx context.Context, marketplace string) (map[string]models.RemoteItem, error) {
	query :=
		`
		SELECT sku, stock, price FROM seller.baseline
		WHERE marketplace = $1
		`
	rows, err := r.db.QueryContext(ctx, query, marketplace)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s baseline: %w", marketplace, err)
	}
	defer rows.Close()

	baseline := make(map[string]models.RemoteItem)
	for rows.Next() {
		var item models.RemoteItem
		if err := rows.Scan(&item.SKU, &item.Stock, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan baseline row: %w", err)
		}
		baseline[item.SKU] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read baseline rows: %w", err)
	}
	return baseline, nil
}

func (r *BaselineRepository) Save(ctx context.Context, marketplace string, items []models.RemoteItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin baseline tx: %w", err)
	}
	defer tx.Rollback()

	query :=
		`
		INSERT INTO seller.baseline (marketplace, sku, stock, price, pushed_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (marketplace, sku)
		DO UPDATE SET stock = EXCLUDED.stock, price = EXCLUDED.price, pushed_at = now()
		`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare baseline upsert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, marketplace, item.SKU, item.Stock, item.Price); err != nil {
			return fmt.Errorf("failed to upsert baseline for sku %s: %w", item.SKU, err)
		}
	}
	return tx.Commit()
}

func (r *BaselineRepository) Delete(ctx context.Context, marketplace string, skus []string) error {
	if len(skus) == 0 {
		return nil
	}
	query :=
		`
		DELETE FROM seller.baseline
		WHERE marketplace = $1 AND sku = ANY($2)
		`
	if _, err := r.db.ExecContext(ctx, query, marketplace, pq.Array(skus)); err != nil {
		return fmt.Errorf("failed to delete baseline rows: %w", err)
	}
	return nil
}
