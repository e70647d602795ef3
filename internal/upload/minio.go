package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	artifactContentType = "text/plain; charset=utf-8"
	defaultRegion       = "us-east-1"
)

// MinioProvider uploads result artifacts to MinIO or any S3-compatible store
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioProvider creates a new MinioProvider
func NewMinioProvider() *MinioProvider {
	return &MinioProvider{}
}

// Name returns the provider name
func (m *MinioProvider) Name() string {
	return "minio"
}

// minioSettings is the validated form of the provider's config map
type minioSettings struct {
	endpoint  string
	secure    bool
	accessKey string
	secretKey string
	bucket    string
	region    string
	prefix    string
}

// parseMinioSettings validates the config map. Every missing required key is
// reported in one error so a misconfigured run can be fixed in one go.
func parseMinioSettings(config map[string]any) (minioSettings, error) {
	str := func(key string) string {
		s, _ := config[key].(string)
		return strings.TrimSpace(s)
	}

	s := minioSettings{
		accessKey: str("access_key"),
		secretKey: str("secret_key"),
		bucket:    str("bucket"),
		region:    str("region"),
		prefix:    strings.Trim(str("prefix"), "/"),
		secure:    true,
	}
	if s.region == "" {
		s.region = defaultRegion
	}

	var missing []string
	for _, req := range []struct{ key, val string }{
		{"endpoint", str("endpoint")},
		{"access_key", s.accessKey},
		{"secret_key", s.secretKey},
		{"bucket", s.bucket},
	} {
		if req.val == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("minio: missing required config: %s", strings.Join(missing, ", "))
	}

	switch v := config["secure"].(type) {
	case nil:
	case bool:
		s.secure = v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("minio: invalid secure value %q", v)
		}
		s.secure = b
	default:
		return s, fmt.Errorf("minio: invalid secure value %v", v)
	}

	var err error
	s.endpoint, s.secure, err = parseEndpoint(str("endpoint"), s.secure)
	return s, err
}

// Configure sets up the MinIO client and verifies the bucket exists.
//
// Required keys: endpoint, access_key, secret_key, bucket.
// Optional keys: secure (default true), region (default us-east-1), prefix.
// An http:// or https:// scheme on the endpoint overrides secure.
func (m *MinioProvider) Configure(ctx context.Context, config map[string]any) error {
	s, err := parseMinioSettings(config)
	if err != nil {
		return err
	}

	client, err := minio.New(s.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.accessKey, s.secretKey, ""),
		Secure: s.secure,
		Region: s.region,
	})
	if err != nil {
		return fmt.Errorf("minio: failed to create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("minio: bucket %s does not exist", s.bucket)
	}

	m.client = client
	m.bucket = s.bucket
	m.prefix = s.prefix
	return nil
}

// Upload stores an artifact as <bucket>/<prefix>/<name>
func (m *MinioProvider) Upload(ctx context.Context, reader io.Reader, size int64, name string) error {
	if m.client == nil {
		return errors.New("minio: provider not configured")
	}

	key := objectKey(m.prefix, name)
	// A known size keeps small artifacts to a single PUT instead of a multipart upload
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: artifactContentType,
	})
	if err != nil {
		return fmt.Errorf("minio: failed to upload %s: %w", key, err)
	}
	return nil
}

// objectKey places an artifact under the prefix with forward slashes on every OS
func objectKey(prefix, name string) string {
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// parseEndpoint strips an optional scheme from the endpoint and derives the secure flag from it
func parseEndpoint(raw string, secure bool) (string, bool, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return raw, secure, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("minio: invalid endpoint URL: %s", raw)
	}
	return u.Host, u.Scheme == "https", nil
}
