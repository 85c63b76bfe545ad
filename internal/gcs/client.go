package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dvloznov/lifeos/internal/domain"
)

// Client is a BlobStore backed by a Google Cloud Storage bucket.
// Blob names are stored as objects under Prefix.
type Client struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewClient connects to bucket. When credsFile is empty Application Default Credentials are used.
func NewClient(ctx context.Context, bucket, prefix, credsFile string) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewClient: %w", domain.Invalid("bucket", "must not be empty"))
	}

	var opts []option.ClientOption
	if credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}

	return &Client{client: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName maps a blob name onto its object path in the bucket.
func (c *Client) ObjectName(name string) string {
	return JoinPrefix(c.prefix, name)
}

// URI returns the gs:// location of a blob, for logs and CLI output.
func (c *Client) URI(name string) string {
	return "gs://" + c.bucket + "/" + c.ObjectName(name)
}

func (c *Client) PutNamed(ctx context.Context, name string, data []byte) error {
	obj := c.client.Bucket(c.bucket).Object(c.ObjectName(name))

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("PutNamed: write %s: %w", c.URI(name), err)
	}
	// The object is only committed once Close succeeds.
	if err := w.Close(); err != nil {
		return fmt.Errorf("PutNamed: finalize %s: %w", c.URI(name), err)
	}
	return nil
}

func (c *Client) GetNamed(ctx context.Context, name string) ([]byte, error) {
	obj := c.client.Bucket(c.bucket).Object(c.ObjectName(name))

	r, err := obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("GetNamed: %s: %w", c.URI(name), domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetNamed: open %s: %w", c.URI(name), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("GetNamed: read %s: %w", c.URI(name), err)
	}
	return data, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// JoinPrefix joins an object prefix and a name with exactly one slash between them.
func JoinPrefix(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

var _ BlobStore = (*Client)(nil)
