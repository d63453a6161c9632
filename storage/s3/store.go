// Package s3 is a storage.Adapter backend on Amazon S3 (or an S3-compatible
// store). Client construction follows the teacher pack's
// aws-sdk-go-v2/config + credentials pattern; conditional create is
// realized with PutObject's If-None-Match precondition, translating a
// PreconditionFailed response into errors.KindAlreadyExists.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	trinitylakeerrors "github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/storage"
)

// Config parameterizes the S3 backend.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // non-empty for S3-compatible stores (MinIO, etc.)
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Store is a storage.Adapter backed by a single S3 bucket/prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New constructs a Store, loading AWS config the way the teacher pack's S3
// adapter does: region plus optional static credentials and custom
// endpoint.
func New(ctx context.Context, cfg Config) (*Store, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(region))
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, trinitylakeerrors.StorageUnavailable("failed to load aws config", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: strings.TrimRight(cfg.Prefix, "/"),
	}, nil
}

func (s *Store) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	key := s.key(path)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, trinitylakeerrors.NotFound("object", path)
		}
		if isStatusCode(err, 404) {
			return nil, trinitylakeerrors.NotFound("object", path)
		}
		return nil, trinitylakeerrors.StorageUnavailable("get object failed", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, trinitylakeerrors.StorageUnavailable("read object body failed", err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	key := s.key(path)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return trinitylakeerrors.StorageUnavailable(fmt.Sprintf("put object %s failed", path), err)
	}
	return nil
}

func (s *Store) StartAtomicWrite(_ context.Context, path string) (storage.AtomicWriteHandle, error) {
	return &atomicHandle{store: s, path: path}, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	fullPrefix := s.key(prefix)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &fullPrefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, trinitylakeerrors.StorageUnavailable("list objects failed", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			out = append(out, s.stripPrefix(*obj.Key))
		}
	}
	return out, nil
}

func (s *Store) stripPrefix(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	key := s.key(path)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) || isStatusCode(err, 404) {
		return false, nil
	}
	return false, trinitylakeerrors.StorageUnavailable("head object failed", err)
}

// atomicHandle buffers the payload and publishes via PutObject with
// If-None-Match: "*" on Close.
type atomicHandle struct {
	store  *Store
	path   string
	buf    bytes.Buffer
	closed bool
}

func (h *atomicHandle) Write(p []byte) (int, error) {
	return h.buf.Write(p)
}

func (h *atomicHandle) Close() error {
	if h.closed {
		return trinitylakeerrors.StorageUnavailable("atomic write handle closed twice", nil)
	}
	h.closed = true

	key := h.store.key(h.path)
	star := "*"
	_, err := h.store.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:       &h.store.bucket,
		Key:          &key,
		Body:         bytes.NewReader(h.buf.Bytes()),
		IfNoneMatch:  &star,
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return trinitylakeerrors.AlreadyExists("object", h.path)
		}
		return trinitylakeerrors.StorageUnavailable("atomic put object failed", err)
	}
	return nil
}

// isPreconditionFailed reports whether err represents S3's response to a
// failed If-None-Match condition (HTTP 412, or the API error code
// "PreconditionFailed").
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "PreconditionFailed" {
			return true
		}
	}
	return isStatusCode(err, 412)
}

func isStatusCode(err error, code int) bool {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == code
	}
	return false
}
