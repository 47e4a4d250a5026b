package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

const batchSize = 500

// HotspotRepo implements ports.HotspotRepository with pgx.
// Each row is stored as its position plus a JSONB copy of every column,
// so the table keeps whatever header the export carries.
type HotspotRepo struct {
	db *DB
}

// NewHotspotRepo creates a new HotspotRepo.
func NewHotspotRepo(db *DB) *HotspotRepo {
	return &HotspotRepo{db: db}
}

// ReplaceAll swaps the table contents for ds inside one transaction.
func (r *HotspotRepo) ReplaceAll(ctx context.Context, ds *domain.Dataset) (int, error) {
	header, err := json.Marshal(ds.Columns)
	if err != nil {
		return 0, fmt.Errorf("marshal header: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE hotspots`); err != nil {
		return 0, fmt.Errorf("truncate: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO hotspot_headers (id, columns) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET columns = EXCLUDED.columns, loaded_at = now()
	`, header); err != nil {
		return 0, fmt.Errorf("store header: %w", err)
	}

	batch := &pgx.Batch{}
	count := 0
	for i, row := range ds.Rows {
		fields, err := json.Marshal(row)
		if err != nil {
			return 0, fmt.Errorf("marshal row %d: %w", i, err)
		}
		batch.Queue(`
			INSERT INTO hotspots (row_id, type, boro, provider, fields)
			VALUES ($1, $2, $3, $4, $5)
		`, i, row[domain.ColumnType], row[domain.ColumnBoro], row[domain.ColumnProvider], fields)
		count++

		if count >= batchSize {
			if err := flushBatch(ctx, tx, batch, count); err != nil {
				return 0, err
			}
			batch = &pgx.Batch{}
			count = 0
		}
	}
	if count > 0 {
		if err := flushBatch(ctx, tx, batch, count); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return ds.Len(), nil
}

// Load returns the stored table in its original row order.
func (r *HotspotRepo) Load(ctx context.Context) (*domain.Dataset, error) {
	ds := &domain.Dataset{Rows: []domain.Row{}}

	var header []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT columns FROM hotspot_headers WHERE id = 1`).Scan(&header)
	if errors.Is(err, pgx.ErrNoRows) {
		return ds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load header: %w", err)
	}
	if err := json.Unmarshal(header, &ds.Columns); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT fields FROM hotspots ORDER BY row_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		row := make(domain.Row, len(ds.Columns))
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, rows.Err()
}

// Count returns the number of stored rows.
func (r *HotspotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM hotspots`).Scan(&n)
	return n, err
}

func flushBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, count int) error {
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < count; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}
