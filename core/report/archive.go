package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"datarecon/core/recon"
	"datarecon/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archive retains a run's JSON report in bucket storage for audit, under
// reports/<run-id>.json, and returns the object name.
func Archive(ctx context.Context, client storage.Client, bucket string, rep *recon.Report) (string, error) {
	payload, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	objectName := fmt.Sprintf("reports/%s.json", rep.RunID)
	_, err = client.PutObject(ctx, bucket, objectName, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to archive report: %w", err)
	}
	return objectName, nil
}
