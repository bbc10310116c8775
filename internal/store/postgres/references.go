package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"attendcore/internal/embedding"
	"attendcore/internal/store"
)

// ReferenceRepository is the PostgreSQL-backed store.ReferenceStore.
type ReferenceRepository struct {
	pool *Pool
}

// NewReferenceRepository creates a new repository.
func NewReferenceRepository(pool *Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// Upsert stores the reference embedding for a student, replacing any prior
// value.
func (r *ReferenceRepository) Upsert(ctx context.Context, ref store.Reference) error {
	vec := pgvector.NewVector(ref.Embedding.Vector)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO face_embeddings (student_id, embedding, variant, dim, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (student_id)
		DO UPDATE SET embedding = $2, variant = $3, dim = $4, updated_at = NOW()
	`, ref.StudentID, vec, string(ref.Embedding.Variant), ref.Embedding.Dim())
	if err != nil {
		return fmt.Errorf("upsert reference: %w", err)
	}
	return nil
}

// Delete removes the reference for a student. Missing rows are a no-op.
func (r *ReferenceRepository) Delete(ctx context.Context, studentID int64) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM face_embeddings WHERE student_id = $1", studentID)
	if err != nil {
		return fmt.Errorf("delete reference: %w", err)
	}
	return nil
}

// All returns every stored reference.
func (r *ReferenceRepository) All(ctx context.Context) ([]store.Reference, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT student_id, embedding, variant, updated_at
		FROM face_embeddings
	`)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer rows.Close()

	var refs []store.Reference
	for rows.Next() {
		var ref store.Reference
		var vec pgvector.Vector
		var variant string
		if err := rows.Scan(&ref.StudentID, &vec, &variant, &ref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		ref.Embedding = embedding.Embedding{
			Variant: embedding.Variant(variant),
			Vector:  vec.Slice(),
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate references: %w", err)
	}
	return refs, nil
}

// Count returns the number of enrolled references.
func (r *ReferenceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM face_embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return count, nil
}
