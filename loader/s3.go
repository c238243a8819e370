package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Source reads datasets from objects named <Prefix><selector><ext> in Bucket.
type S3Source struct {
	Client S3API
	Bucket string
	Prefix string
}

// S3Options configure NewS3Source.
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string

	// AccessKey and SecretKey override the default credential chain.
	AccessKey, SecretKey string
}

// NewS3Source builds a client from the default AWS configuration. A custom
// Endpoint selects path-style addressing for S3-compatible stores.
func NewS3Source(ctx context.Context, o S3Options) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.Region))
	}
	if o.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return &S3Source{Client: client, Bucket: o.Bucket, Prefix: o.Prefix}, nil
}

func (s *S3Source) Open(ctx context.Context, selector string) (io.ReadCloser, string, error) {
	if err := checkSelector(selector); err != nil {
		return nil, "", err
	}
	for _, ext := range extensions {
		key := s.Prefix + selector + ext
		out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
		}
		return out.Body, path.Base(key), nil
	}
	return nil, "", fmt.Errorf("%w: %q in s3://%s/%s", ErrNotFound, selector, s.Bucket, s.Prefix)
}

func (s *S3Source) List(ctx context.Context) ([]string, error) {
	var ss []string
	p := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.Bucket, s.Prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.Prefix)
			if strings.Contains(name, "/") {
				continue
			}
			if sel, ok := selectorOf(name); ok {
				ss = append(ss, sel)
			}
		}
	}
	return sortSelectors(ss), nil
}
