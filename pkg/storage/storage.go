// Package storage stores uploaded files in a gocloud blob bucket and maps
// object keys to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

// Store is the object storage surface used by services.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteURLs(ctx context.Context, urls []string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Bucket implements Store on top of a gocloud blob bucket.
type Bucket struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

// Open opens the bucket named by cfg.BucketURL (gs://, file://, mem://).
func Open(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Bucket, error) {
	if strings.TrimSpace(cfg.BucketURL) == "" {
		return nil, errors.New("storage bucket url is required")
	}
	b, err := blob.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("opening bucket %q: %w", cfg.BucketURL, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketURL), "object storage ready")
	}
	return NewBucket(b, cfg.PublicBaseURL), nil
}

// NewBucket wraps an opened bucket.
func NewBucket(b *blob.Bucket, publicBaseURL string) *Bucket {
	return &Bucket{bucket: b, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload writes data under key and returns its public URL.
func (b *Bucket) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := b.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return "", fmt.Errorf("writing object %q: %w", key, err)
	}
	return b.PublicURL(key), nil
}

// Delete removes the object stored under key.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := b.bucket.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting object %q: %w", key, err)
	}
	return nil
}

// DeleteURLs removes every object referenced by urls and combines failures.
// URLs outside the public base are skipped.
func (b *Bucket) DeleteURLs(ctx context.Context, urls []string) error {
	var errs error
	for _, u := range urls {
		key, ok := b.KeyFromURL(u)
		if !ok {
			continue
		}
		errs = multierr.Append(errs, b.Delete(ctx, key))
	}
	return errs
}

// PublicURL maps an object key to the URL clients download it from.
func (b *Bucket) PublicURL(key string) string {
	return b.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL reverses PublicURL.
func (b *Bucket) KeyFromURL(u string) (string, bool) {
	prefix := b.publicBaseURL + "/"
	if !strings.HasPrefix(u, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u, prefix)
	return key, key != ""
}

// Ping verifies the bucket is reachable.
func (b *Bucket) Ping(ctx context.Context) error {
	ok, err := b.bucket.IsAccessible(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("bucket not accessible")
	}
	return nil
}

func (b *Bucket) Close() error {
	return b.bucket.Close()
}
