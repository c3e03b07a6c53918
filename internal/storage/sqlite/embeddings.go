package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/log"
)

// EmbeddingRepo implements core.EmbeddingStore on the embeddings table.
type EmbeddingRepo struct {
	db *sql.DB
}

func NewEmbeddingRepo(db *sql.DB) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

func (r *EmbeddingRepo) LoadEmbeddings(ctx context.Context, chatID string) (map[string][]float32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT cache_key, vector FROM embeddings WHERE chat_id = ?`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var key string
		var blob []byte
		if err := rows.Scan(&key, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec, err := deserializeVector(blob)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("key", key).Msg("skipping corrupt embedding row")
			continue
		}
		out[key] = vec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStore, err)
	}
	return out, nil
}

func (r *EmbeddingRepo) StoreEmbeddings(ctx context.Context, chatID string, entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (chat_id, cache_key, vector) VALUES (?, ?, ?)
		ON CONFLICT(chat_id, cache_key) DO UPDATE SET vector = excluded.vector`)
	if err != nil {
		return fmt.Errorf("failed to prepare embedding insert: %w", err)
	}
	defer stmt.Close()

	for key, vec := range entries {
		blob, err := serializeVector(vec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, chatID, key, blob); err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	return tx.Commit()
}
