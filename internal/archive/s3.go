package archive

import (
	"context"

	infras3 "assetcore/internal/infra/archive/s3"
)

// S3Config configures the S3 archive driver.
type S3Config = infras3.Config

// NewS3 constructs an S3-backed archive from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infras3.New(ctx, cfg)
}

// OpenS3FromEnv constructs an S3 archive using environment variables.
func OpenS3FromEnv(ctx context.Context) (Store, error) {
	return infras3.OpenFromEnv(ctx)
}

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return infras3.NewMockForTests() }
