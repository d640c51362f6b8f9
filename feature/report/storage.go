package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ReportsPrefix is the object prefix under which reports are stored.
const ReportsPrefix = "reports"

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// OrganizationPrefix returns the object prefix of an organization's reports.
func OrganizationPrefix(organization string) string {
	slug := unsafeKeyChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(organization)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "unknown"
	}
	return path.Join(ReportsPrefix, slug) + "/"
}

// ObjectName returns the object key of a result's CSV report.
func ObjectName(result *reconcile.Result) string {
	runID := result.RunID
	if runID == "" {
		runID = result.GeneratedAt.UTC().Format("20060102T150405Z")
	}
	return OrganizationPrefix(result.Organization) + runID + ".csv"
}

// StorageSink uploads CSV reports to object storage.
type StorageSink struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewStorageSink creates a sink uploading to bucket.
func NewStorageSink(client storage.Client, bucket, region string, logger *zap.Logger) *StorageSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageSink{client: client, bucket: bucket, region: region, logger: logger}
}

// Write implements Sink.
func (s *StorageSink) Write(ctx context.Context, result *reconcile.Result) error {
	data, err := EncodeCSV(result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return err
	}

	object := ObjectName(result)
	info, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/csv",
		UserMetadata: map[string]string{
			"organization": result.Organization,
			"run-id":       result.RunID,
			"complete":     strconv.FormatBool(result.Complete()),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}

	s.logger.Info("Uploaded report",
		zap.String("bucket", s.bucket),
		zap.String("object", object),
		zap.Int64("size", info.Size),
	)
	return nil
}

// List returns the stored reports of an organization, oldest key first.
func (s *StorageSink) List(ctx context.Context, organization string) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    OrganizationPrefix(organization),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
