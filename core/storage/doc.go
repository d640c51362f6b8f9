// Package storage provides an abstraction layer for the object storage that
// receives reconciliation reports.
//
// It wraps the MinIO Go client, which supports both AWS S3 and self-hosted
// MinIO instances. The Client interface only exposes what the report upload
// and listing need, so tests can use the mocks in core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
