package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appconfig "github.com/electric-coding/artifactstore/internal/config"
	"github.com/electric-coding/artifactstore/internal/paths"
	"github.com/electric-coding/artifactstore/internal/state"
)

const (
	defaultS3RequestTimeout  = 5 * time.Minute
	defaultS3ListPageTimeout = 30 * time.Second
	defaultS3DeleteTimeout   = time.Minute
	deleteBatchSize          = 1000
)

type s3Uploader interface {
	UploadObject(ctx context.Context, input *transfermanager.UploadObjectInput, opts ...func(*transfermanager.Options)) (*transfermanager.UploadObjectOutput, error)
}

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type listObjectsV2Paginator interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type awsListObjectsV2Paginator struct {
	inner *s3.ListObjectsV2Paginator
}

func (p *awsListObjectsV2Paginator) HasMorePages() bool {
	return p.inner != nil && p.inner.HasMorePages()
}

func (p *awsListObjectsV2Paginator) NextPage(ctx context.Context, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if p.inner == nil {
		return nil, errors.New("s3 paginator is not configured")
	}
	return p.inner.NextPage(ctx, optFns...)
}

func newAWSListObjectsV2Paginator(client s3.ListObjectsV2APIClient, input *s3.ListObjectsV2Input) listObjectsV2Paginator {
	return &awsListObjectsV2Paginator{inner: s3.NewListObjectsV2Paginator(client, input)}
}

// S3Client implements ObjectClient on top of the AWS SDK. Every call is
// bounded by its own timeout; no context outlives a single operation.
type S3Client struct {
	api                       s3API
	uploader                  s3Uploader
	newListObjectsV2Paginator func(s3.ListObjectsV2APIClient, *s3.ListObjectsV2Input) listObjectsV2Paginator
	requestTimeout            time.Duration
	listPageTimeout           time.Duration
	deleteTimeout             time.Duration
}

func NewS3Client(cfg appconfig.S3Config) (*S3Client, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, errors.New("s3 region is required")
	}
	if err := appconfig.ValidateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{
		api:                       client,
		uploader:                  transfermanager.New(client),
		newListObjectsV2Paginator: newAWSListObjectsV2Paginator,
		requestTimeout:            durationOr(cfg.RequestTimeout.Duration, defaultS3RequestTimeout),
		listPageTimeout:           durationOr(cfg.ListPageTimeout.Duration, defaultS3ListPageTimeout),
		deleteTimeout:             durationOr(cfg.DeleteTimeout.Duration, defaultS3DeleteTimeout),
	}, nil
}

var defaultClient = NewLazyClient(func() (ObjectClient, error) {
	cfgPath, err := state.ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewS3Client(cfg.S3)
})

// DefaultClient is the process-wide S3 client, built from the user's config
// file and AWS environment the first time an object-store operation runs.
func DefaultClient() *LazyClient {
	return defaultClient
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func operationContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (c *S3Client) Upload(bucket, key string, data []byte, contentType string) error {
	if c.uploader == nil {
		return fmt.Errorf("%w: s3 uploader is not configured", ErrCapabilityUnavailable)
	}
	ctx, cancel := operationContext(c.requestTimeout)
	defer cancel()

	input := &transfermanager.UploadObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := c.uploader.UploadObject(ctx, input)
	if err != nil {
		return classifyS3Error("put object", paths.ObjectURI(bucket, key), err)
	}
	return nil
}

func (c *S3Client) Download(bucket, key string) ([]byte, error) {
	if c.api == nil {
		return nil, fmt.Errorf("%w: s3 api client is not configured", ErrCapabilityUnavailable)
	}
	ctx, cancel := operationContext(c.requestTimeout)
	defer cancel()

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error("get object", paths.ObjectURI(bucket, key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body %s: %w: %w", paths.ObjectURI(bucket, key), ErrTransfer, err)
	}
	return data, nil
}

func (c *S3Client) Head(bucket, key string) (bool, error) {
	if c.api == nil {
		return false, fmt.Errorf("%w: s3 api client is not configured", ErrCapabilityUnavailable)
	}
	ctx, cancel := operationContext(c.requestTimeout)
	defer cancel()

	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		classified := classifyS3Error("head object", paths.ObjectURI(bucket, key), err)
		if errors.Is(classified, ErrNotFound) {
			return false, nil
		}
		return false, classified
	}
	return true, nil
}

func (c *S3Client) List(bucket, prefix string, limit int) ([]string, error) {
	if c.api == nil {
		return nil, fmt.Errorf("%w: s3 api client is not configured", ErrCapabilityUnavailable)
	}
	if c.newListObjectsV2Paginator == nil {
		return nil, errors.New("s3 paginator factory is not configured")
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if limit > 0 && limit < 1000 {
		input.MaxKeys = aws.Int32(int32(limit))
	}

	paginator := c.newListObjectsV2Paginator(c.api, input)
	if paginator == nil {
		return nil, errors.New("s3 paginator is not configured")
	}

	keys := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := c.nextListPage(paginator)
		if err != nil {
			return nil, classifyS3Error("list objects", paths.ObjectURI(bucket, prefix), err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			keys = append(keys, *obj.Key)
			if limit > 0 && len(keys) >= limit {
				return keys, nil
			}
		}
	}
	return keys, nil
}

func (c *S3Client) nextListPage(paginator listObjectsV2Paginator) (*s3.ListObjectsV2Output, error) {
	ctx, cancel := operationContext(c.listPageTimeout)
	defer cancel()
	return paginator.NextPage(ctx)
}

func (c *S3Client) Delete(bucket string, keys []string) error {
	if c.api == nil {
		return fmt.Errorf("%w: s3 api client is not configured", ErrCapabilityUnavailable)
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		if err := c.deleteBatch(bucket, keys[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *S3Client) deleteBatch(bucket string, keys []string) error {
	ctx, cancel := operationContext(c.deleteTimeout)
	defer cancel()

	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
	}
	out, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return classifyS3Error("delete objects", paths.ObjectURI(bucket, keys[0]), err)
	}
	if out != nil && len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("delete objects %s: %w: %d keys failed, first %s: %s",
			paths.ObjectURI(bucket, aws.ToString(first.Key)), ErrTransfer, len(out.Errors),
			aws.ToString(first.Code), aws.ToString(first.Message))
	}
	return nil
}

func (c *S3Client) Copy(srcBucket, srcKey, destBucket, destKey string) error {
	if c.api == nil {
		return fmt.Errorf("%w: s3 api client is not configured", ErrCapabilityUnavailable)
	}
	ctx, cancel := operationContext(c.requestTimeout)
	defer cancel()

	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(destBucket),
		Key:        aws.String(destKey),
		CopySource: aws.String(copySource(srcBucket, srcKey)),
	})
	if err != nil {
		return classifyS3Error("copy object", paths.ObjectURI(srcBucket, srcKey), err)
	}
	return nil
}

// copySource builds the URL-encoded "bucket/key" form CopyObject expects.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

func classifyS3Error(op, target string, err error) error {
	kind := ErrTransfer

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	var apiErr smithy.APIError
	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &notFound), errors.As(err, &noSuchBucket):
		kind = ErrNotFound
	case errors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			kind = ErrNotFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			kind = ErrAccessDenied
		}
	}
	return fmt.Errorf("%s %s: %w: %w", op, target, kind, err)
}
