package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/index"
	"github.com/pgvector/pgvector-go"
)

// CorpusChunkIndex is the Postgres-backed vector index. Rebuild runs as
// a single transaction, so concurrent readers observe either the
// previous or the new generation, never a partial mix. Search is an
// exact cosine scan (no ANN index on the table); ties are broken by the
// position column, which records insertion order.
type CorpusChunkIndex struct {
	pool *pgxpool.Pool
}

// NewCorpusChunkIndex creates a CorpusChunkIndex backed by the pool.
func NewCorpusChunkIndex(pool *pgxpool.Pool) *CorpusChunkIndex {
	return &CorpusChunkIndex{pool: pool}
}

// Rebuild atomically replaces the entire index contents.
func (r *CorpusChunkIndex) Rebuild(ctx context.Context, entries []index.Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM corpus_chunks`); err != nil {
		return err
	}

	for i, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO corpus_chunks (position, chunk_id, document_id, source, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			i,
			e.ChunkID,
			e.DocumentID,
			e.Source,
			e.Text,
			pgvector.NewVector(e.Embedding),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Search returns the k entries nearest to the query vector by cosine
// similarity. Runs inside a repeatable-read transaction so the emptiness
// check and the scan see the same generation.
func (r *CorpusChunkIndex) Search(ctx context.Context, query []float32, k int) ([]index.Match, error) {
	if k <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM corpus_chunks`).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrIndexEmpty
	}

	vec := pgvector.NewVector(query)
	rows, err := tx.Query(ctx,
		`SELECT chunk_id, document_id, source, content, embedding,
		        1 - (embedding <=> $1) AS score
		 FROM corpus_chunks
		 ORDER BY embedding <=> $1 ASC, position ASC
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []index.Match
	for rows.Next() {
		var m index.Match
		var embedding pgvector.Vector
		var score float64
		if err := rows.Scan(&m.Entry.ChunkID, &m.Entry.DocumentID, &m.Entry.Source, &m.Entry.Text, &embedding, &score); err != nil {
			return nil, err
		}
		m.Entry.Embedding = embedding.Slice()
		m.Score = float32(score)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return matches, nil
}

// Count returns the number of entries in the current generation.
func (r *CorpusChunkIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM corpus_chunks`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
