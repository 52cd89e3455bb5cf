package spaces

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/igtharvillage/thar-api/config"
)

// ErrForeignURL is returned when a URL does not point into the configured bucket
var ErrForeignURL = errors.New("url does not belong to this bucket")

// Client handles DigitalOcean Spaces operations
type Client struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
	cdnURL   string
}

// Config holds configuration for the Spaces client
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// ConfigFromEnv reads the DO_SPACES_* settings
func ConfigFromEnv(env *config.EnvironmentVariable) (Config, error) {
	cfg := Config{
		AccessKey: env.DO_SPACES_ACCESS_KEY,
		SecretKey: env.DO_SPACES_SECRET_KEY,
		Bucket:    env.DO_SPACES_BUCKET,
		Region:    env.DO_SPACES_REGION,
		Endpoint:  env.DO_SPACES_ENDPOINT,
		CDNURL:    strings.TrimRight(env.DO_SPACES_CDN_ENDPOINT, "/"),
	}

	if cfg.Bucket == "" || cfg.Region == "" {
		return cfg, fmt.Errorf("DO_SPACES_BUCKET and DO_SPACES_REGION must be configured")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return cfg, fmt.Errorf("DO_SPACES_ACCESS_KEY and DO_SPACES_SECRET_KEY must be configured")
	}

	// Default endpoint, without scheme, for URL construction
	if cfg.Endpoint == "" {
		cfg.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", cfg.Region)
	}
	cfg.Endpoint = strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	return cfg, nil
}

// NewClient creates a new Spaces client
func NewClient(cfg Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		cdnURL:   cfg.CDNURL,
	}, nil
}

// PutObject uploads data under key with public read access
func (c *Client) PutObject(ctx context.Context, key string, data io.ReadSeeker, contentType string) error {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        data,
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// DeleteObject deletes the object stored under key
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the public URL for key, preferring the CDN
func (c *Client) PublicURL(key string) string {
	return PublicURL(c.cdnURL, c.bucket, c.endpoint, key)
}

// KeyFromURL resolves a URL produced by PublicURL back to its object key
func (c *Client) KeyFromURL(rawURL string) (string, error) {
	return KeyFromURL(c.cdnURL, c.bucket, c.endpoint, rawURL)
}

// PublicURL builds the CDN URL when cdnURL is set, otherwise the
// virtual-hosted bucket URL
func PublicURL(cdnURL, bucket, endpoint, key string) string {
	if cdnURL != "" {
		return fmt.Sprintf("%s/%s", cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", bucket, endpoint, key)
}

// KeyFromURL is the inverse of PublicURL
func KeyFromURL(cdnURL, bucket, endpoint, rawURL string) (string, error) {
	prefixes := []string{fmt.Sprintf("https://%s.%s/", bucket, endpoint)}
	if cdnURL != "" {
		prefixes = append([]string{cdnURL + "/"}, prefixes...)
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(rawURL, prefix) {
			key := strings.TrimPrefix(rawURL, prefix)
			if i := strings.IndexAny(key, "?#"); i >= 0 {
				key = key[:i]
			}
			unescaped, err := url.PathUnescape(key)
			if err != nil {
				return "", fmt.Errorf("invalid object url %q: %w", rawURL, err)
			}
			if unescaped == "" {
				break
			}
			return unescaped, nil
		}
	}
	return "", fmt.Errorf("%q: %w", rawURL, ErrForeignURL)
}

// ContentType returns the content type for an image filename
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".avif":
		return "image/avif"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
