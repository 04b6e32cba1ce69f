// Package objectstore stages s3:// sources and destinations through local
// temp files using a MinIO client.
package objectstore

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	Region    string `json:"region" yaml:"region" toml:"region"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl" toml:"use_ssl"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Endpoint) != "" }

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("object store endpoint must be host[:port], got %q", c.Endpoint)
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("object store access and secret keys must be set together")
	}
	return nil
}

// Client implements formats.Stager for the s3 scheme.
type Client struct {
	mc     *minio.Client
	region string
}

func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, err
	}
	return &Client{mc: mc, region: cfg.Region}, nil
}

// ParseURI splits s3://bucket/key.
func ParseURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri needs a bucket and a key: %q", uri)
	}
	return u.Host, key, nil
}

func (c *Client) Download(ctx context.Context, uri, local string) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}
	if err := c.mc.FGetObject(ctx, bucket, key, local, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("get %s: %w", uri, err)
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, local, uri string) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}
	if err := c.ensureBucket(ctx, bucket); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}
	opts := minio.PutObjectOptions{ContentType: contentType(key)}
	if _, err := c.mc.FPutObject(ctx, bucket, key, local, opts); err != nil {
		return fmt.Errorf("put %s: %w", uri, err)
	}
	return nil
}

func (c *Client) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.region})
}

func contentType(key string) string {
	switch ext := strings.ToLower(path.Ext(key)); ext {
	case ".csv":
		return "text/csv"
	case ".jsonl", ".ndjson":
		return "application/x-ndjson"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return "application/octet-stream"
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}
