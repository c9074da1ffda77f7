package report

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Exporter uploads rendered reports to an S3-compatible bucket.
type Exporter struct {
	client *minio.Client
	bucket string
}

// NewExporter connects to the configured endpoint and creates the bucket if needed.
func NewExporter(ctx context.Context, cfg config.ExportConfig) (*Exporter, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object storage client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Exporter{client: cli, bucket: cfg.Bucket}, nil
}

// Upload stores data under key and returns the object's URL.
func (e *Exporter) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := e.client.PutObject(ctx, e.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	u := *e.client.EndpointURL()
	u.Path = path.Join("/", e.bucket, key)
	return u.String(), nil
}

// ObjectKey names a report artifact by creation date and report id, e.g.
// reports/2026/05/01/<id>.pdf.
func ObjectKey(r models.ReportData, ext string) string {
	return fmt.Sprintf("reports/%s/%s.%s", r.CreatedAt.UTC().Format("2006/01/02"), r.ID, ext)
}
