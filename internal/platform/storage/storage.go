package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Store keeps generated documents such as payslips and report exports.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Local struct {
	Dir string
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

func (l *Local) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(l.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3 struct {
	Bucket string
	client objectPutter
}

func NewS3(ctx context.Context, region, bucket string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3{Bucket: bucket, client: s3.NewFromConfig(cfg)}, nil
}

func (s *S3) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.Bucket,
		Key:         &clean,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return "s3://" + s.Bucket + "/" + clean, nil
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

// WithPrefix scopes every key under prefix, one directory per organization.
func WithPrefix(next Store, prefix string) Store {
	return prefixed{next: next, prefix: strings.Trim(prefix, "/")}
}

type prefixed struct {
	next   Store
	prefix string
}

func (p prefixed) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if p.prefix == "" {
		return p.next.Put(ctx, key, body, contentType)
	}
	return p.next.Put(ctx, p.prefix+"/"+key, body, contentType)
}
