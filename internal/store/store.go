package store

import (
	"context"
	"time"

	"attendcore/internal/embedding"
)

// Reference is one enrolled student's current reference embedding. A student
// has at most one reference; a new enrollment replaces the previous one.
type Reference struct {
	StudentID int64
	Embedding embedding.Embedding
	UpdatedAt time.Time
}

// ReferenceStore is durable identity-to-embedding storage. Implementations
// must treat Upsert as replace-on-conflict and must not depend on iteration
// order in All.
type ReferenceStore interface {
	// Upsert stores the reference, replacing any prior value for the student.
	Upsert(ctx context.Context, ref Reference) error
	// Delete removes the reference for the student. Deleting a student with
	// no reference is a no-op.
	Delete(ctx context.Context, studentID int64) error
	// All returns every stored reference in unspecified order.
	All(ctx context.Context) ([]Reference, error)
}

// Replica mirrors reference writes to a remote store. Mirror calls are
// best-effort: failures are reported but never fail the local operation.
type Replica interface {
	Name() string
	PutReference(ctx context.Context, ref Reference) error
	DeleteReference(ctx context.Context, studentID int64) error
}
