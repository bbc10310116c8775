// Package replica mirrors reference embeddings to an S3-compatible bucket.
// The mirror is best-effort: the local store stays authoritative and a
// replica outage never blocks enrollment.
package replica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"attendcore/internal/config"
	"attendcore/internal/store"
)

// MinioReplica implements store.Replica against MinIO or any S3-compatible
// endpoint. One JSON object per student under refs/.
type MinioReplica struct {
	client *minio.Client
	bucket string
}

// referenceObject is the JSON layout of a mirrored reference.
type referenceObject struct {
	StudentID int64     `json:"student_id"`
	Variant   string    `json:"variant"`
	Vector    []float32 `json:"vector"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMinioReplica creates a replica client from config. The bucket must
// already exist; creating it is a deployment concern.
func NewMinioReplica(cfg config.ReplicaConfig) (*MinioReplica, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating replica client: %w", err)
	}
	return &MinioReplica{client: client, bucket: cfg.Bucket}, nil
}

// Name identifies the replica in log lines.
func (r *MinioReplica) Name() string {
	return "minio:" + r.bucket
}

// objectKey returns the bucket key for a student's reference.
func objectKey(studentID int64) string {
	return fmt.Sprintf("refs/%d.json", studentID)
}

// PutReference mirrors an upserted reference.
func (r *MinioReplica) PutReference(ctx context.Context, ref store.Reference) error {
	data, err := json.Marshal(referenceObject{
		StudentID: ref.StudentID,
		Variant:   string(ref.Embedding.Variant),
		Vector:    ref.Embedding.Vector,
		UpdatedAt: ref.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding reference: %w", err)
	}

	_, err = r.client.PutObject(ctx, r.bucket, objectKey(ref.StudentID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("uploading reference: %w", err)
	}
	return nil
}

// DeleteReference mirrors a deletion.
func (r *MinioReplica) DeleteReference(ctx context.Context, studentID int64) error {
	err := r.client.RemoveObject(ctx, r.bucket, objectKey(studentID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("removing reference: %w", err)
	}
	return nil
}
