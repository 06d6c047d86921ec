// Package resume fetches the downloadable resume from local disk or an
// S3-compatible bucket and inspects it.
package resume

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nikogura/portfolio-assistant/pkg/config"
	"github.com/pkg/errors"
)

// MaxFileBytes caps resume files.
const MaxFileBytes = 20 << 20

// ErrNotConfigured is returned when no resume location is configured.
var ErrNotConfigured = errors.New("resume store not configured")

// Store provides the resume file.
type Store interface {
	Fetch(ctx context.Context) (data []byte, name string, err error)
	Location() (location string)
}

// NewStore selects the S3 store when a bucket is set, otherwise the local
// directory. It returns ErrNotConfigured when neither is set.
func NewStore(ctx context.Context, cfg config.ResumeConfig) (store Store, err error) {
	if cfg.S3.Bucket != "" {
		var s3Store *S3Store
		s3Store, err = NewS3Store(ctx, cfg.S3)
		if err != nil {
			return store, err
		}
		store = s3Store
		return store, err
	}

	if cfg.Dir != "" {
		store = NewLocalStore(cfg.Dir, cfg.File)
		return store, err
	}

	err = ErrNotConfigured
	return store, err
}

// LocalStore reads the resume from a directory.
type LocalStore struct {
	path string
}

// NewLocalStore creates a store for dir/file.
func NewLocalStore(dir, file string) (store *LocalStore) {
	store = &LocalStore{path: filepath.Join(dir, file)}
	return store
}

// Location returns the file path.
func (s *LocalStore) Location() (location string) {
	location = s.path
	return location
}

// Fetch reads the file.
func (s *LocalStore) Fetch(ctx context.Context) (data []byte, name string, err error) {
	err = ctx.Err()
	if err != nil {
		return data, name, err
	}

	name = filepath.Base(s.path)

	var f *os.File
	f, err = os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("resume file not found: %s", s.path)
			return data, name, err
		}
		err = errors.Wrapf(err, "failed to open resume file: %s", s.path)
		return data, name, err
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, MaxFileBytes))
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume file: %s", s.path)
		return data, name, err
	}

	return data, name, err
}

// S3Store reads the resume object from a bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Store creates an S3 client. A custom endpoint (R2, MinIO) switches to
// path-style addressing; static keys override the default credential chain.
func NewS3Store(ctx context.Context, cfg config.S3Config) (store *S3Store, err error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		err = errors.New("s3 bucket and key are required")
		return store, err
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	var awsCfg aws.Config
	awsCfg, err = awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		err = errors.Wrap(err, "failed to load aws config")
		return store, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	store = &S3Store{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
	}

	return store, err
}

// Location returns s3://bucket/key.
func (s *S3Store) Location() (location string) {
	location = "s3://" + s.bucket + "/" + s.key
	return location
}

// Fetch downloads the object.
func (s *S3Store) Fetch(ctx context.Context) (data []byte, name string, err error) {
	name = filepath.Base(s.key)

	var out *s3.GetObjectOutput
	out, err = s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		err = errors.Wrapf(err, "failed to get object %s", s.Location())
		return data, name, err
	}
	defer out.Body.Close()

	data, err = io.ReadAll(io.LimitReader(out.Body, MaxFileBytes))
	if err != nil {
		err = errors.Wrapf(err, "failed to read object %s", s.Location())
		return data, name, err
	}

	return data, name, err
}
