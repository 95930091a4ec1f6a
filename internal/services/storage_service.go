// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/javajoker/inventory-backend/internal/config"
)

const reportContentType = "application/json"

// ReportArchiver writes report documents to S3, or to a local directory
// when no AWS credentials are configured.
type ReportArchiver struct {
	s3Client *s3.S3
	bucket   string
	region   string
	localDir string
}

type ArchiveResult struct {
	URL      string    `json:"url"`
	Key      string    `json:"key"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type"`
	StoredAt time.Time `json:"stored_at"`
}

func NewReportArchiver(cfg config.AWSConfig) (*ReportArchiver, error) {
	a := &ReportArchiver{bucket: cfg.S3Bucket, region: cfg.Region, localDir: cfg.ReportsDir}
	if cfg.AccessKeyID == "" {
		return a, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	a.s3Client = s3.New(sess)
	return a, nil
}

// Store marshals payload and writes it under reports/<name>/<date>_<id>.json.
func (a *ReportArchiver) Store(ctx context.Context, name string, at time.Time, payload interface{}) (*ArchiveResult, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	key := a.objectKey(name, at)

	if a.s3Client != nil {
		return a.storeS3(ctx, key, body, at)
	}
	return a.storeLocal(key, body, at)
}

func (a *ReportArchiver) storeS3(ctx context.Context, key string, body []byte, at time.Time) (*ArchiveResult, error) {
	_, err := a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(reportContentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &ArchiveResult{
		URL:      fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key),
		Key:      key,
		Size:     int64(len(body)),
		MimeType: reportContentType,
		StoredAt: at,
	}, nil
}

func (a *ReportArchiver) storeLocal(key string, body []byte, at time.Time) (*ArchiveResult, error) {
	path := filepath.Join(a.localDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return &ArchiveResult{
		URL:      "file://" + filepath.ToSlash(path),
		Key:      key,
		Size:     int64(len(body)),
		MimeType: reportContentType,
		StoredAt: at,
	}, nil
}

func (a *ReportArchiver) objectKey(name string, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s_%s.json", name, at.UTC().Format("20060102T150405"), uuid.New().String()[:8])
}
