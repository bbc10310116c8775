package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"attendcore/internal/embedding"
)

// FileStore is a durable ReferenceStore backed by one JSON file per student
// in a local directory. It is the zero-configuration fallback when no
// database is configured; the database backend is preferred in production.
type FileStore struct {
	dir string
}

// fileReference is the on-disk JSON layout.
type fileReference struct {
	StudentID int64     `json:"student_id"`
	Variant   string    `json:"variant"`
	Vector    []float32 `json:"vector"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating embedding directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(studentID int64) string {
	return filepath.Join(f.dir, fmt.Sprintf("%d.json", studentID))
}

// Upsert writes the reference file, replacing any prior one.
func (f *FileStore) Upsert(_ context.Context, ref Reference) error {
	data, err := json.Marshal(fileReference{
		StudentID: ref.StudentID,
		Variant:   string(ref.Embedding.Variant),
		Vector:    ref.Embedding.Vector,
		UpdatedAt: ref.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding reference: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp := f.path(ref.StudentID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing reference file: %w", err)
	}
	if err := os.Rename(tmp, f.path(ref.StudentID)); err != nil {
		return fmt.Errorf("replacing reference file: %w", err)
	}
	return nil
}

// Delete removes the reference file if it exists.
func (f *FileStore) Delete(_ context.Context, studentID int64) error {
	if err := os.Remove(f.path(studentID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing reference file: %w", err)
	}
	return nil
}

// All loads every reference file in the directory. Unparseable files are
// skipped so one corrupt entry cannot take down the whole set.
func (f *FileStore) All(_ context.Context) ([]Reference, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading embedding directory: %w", err)
	}

	var refs []Reference
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64); err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			continue
		}
		var fr fileReference
		if err := json.Unmarshal(data, &fr); err != nil {
			continue
		}
		if len(fr.Vector) == 0 {
			continue
		}
		refs = append(refs, Reference{
			StudentID: fr.StudentID,
			Embedding: embedding.Embedding{
				Variant: embedding.Variant(fr.Variant),
				Vector:  fr.Vector,
			},
			UpdatedAt: fr.UpdatedAt,
		})
	}
	return refs, nil
}
