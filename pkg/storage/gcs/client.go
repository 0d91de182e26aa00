package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/angelmondragon/tienda-backend/pkg/gcp"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const pingTimeout = 5 * time.Second

// objectAPI is the slice of the storage JSON API the client uses.
type objectAPI interface {
	insert(ctx context.Context, bucket, name, contentType string, body io.Reader) error
	bucketExists(ctx context.Context, bucket string) error
}

// Client uploads objects (shipment proof photos) and returns their public URL.
type Client struct {
	api           objectAPI
	bucket        string
	publicBaseURL string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcpCfg config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	svc, err := storage.NewService(ctx, gcp.ClientOptions(gcpCfg, option.WithScopes(storage.DevstorageReadWriteScope))...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}

	client := newClient(&serviceAPI{svc: svc}, cfg)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(api objectAPI, cfg config.GCSConfig) *Client {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &Client{api: api, bucket: cfg.BucketName, publicBaseURL: base}
}

// Upload stores body under objectName and returns the object's public URL.
func (c *Client) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("gcs client not initialized")
	}
	objectName = strings.TrimLeft(objectName, "/")
	if objectName == "" {
		return "", errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := c.api.insert(ctx, c.bucket, objectName, contentType, body); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return c.PublicURL(objectName), nil
}

// PublicURL builds the browser-facing URL for an object in the configured bucket.
func (c *Client) PublicURL(objectName string) string {
	segments := strings.Split(strings.TrimLeft(objectName, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, url.PathEscape(c.bucket), strings.Join(segments, "/"))
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.api.bucketExists(ctx, c.bucket)
}

type serviceAPI struct {
	svc *storage.Service
}

func (s *serviceAPI) insert(ctx context.Context, bucket, name, contentType string, body io.Reader) error {
	_, err := s.svc.Objects.
		Insert(bucket, &storage.Object{Name: name, ContentType: contentType}).
		Media(body, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	return err
}

func (s *serviceAPI) bucketExists(ctx context.Context, bucket string) error {
	_, err := s.svc.Buckets.Get(bucket).Context(ctx).Do()
	return err
}
