// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package storage uploads run artifacts to S3-compatible object storage.
// Uploads are optional; a run without an S3 endpoint configured skips this
// stage entirely.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"strr/reports/internal/config"
	apperrors "strr/reports/internal/errors"
)

// Uploader pushes merged CSVs and the rendered report into a bucket,
// keyed by run date.
type Uploader struct {
	client *minio.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// New creates an Uploader from the S3 config. The secret key comes from the
// environment or the OS keychain, never from the config file.
func New(cfg config.S3Config, secretKey string, log *zap.Logger) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, secretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UploadFailed, "create s3 client", err)
	}
	return &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, log: log}, nil
}

// Upload stores every file under <prefix>/<runDate>/<basename>.
func (u *Uploader) Upload(ctx context.Context, runDate string, paths []string) error {
	for _, p := range paths {
		key := path.Join(u.prefix, runDate, filepath.Base(p))
		_, err := u.client.FPutObject(ctx, u.bucket, key, p, minio.PutObjectOptions{
			ContentType: contentType(p),
		})
		if err != nil {
			return apperrors.Wrap(apperrors.UploadFailed, fmt.Sprintf("upload %s", key), err)
		}
		u.log.Info("uploaded artifact",
			zap.String("bucket", u.bucket),
			zap.String("key", key))
	}
	return nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return "text/csv"
	case ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
