package backup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination stores exports in an S3-compatible bucket, one object per
// table under a shared key prefix.
type S3Destination struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Destination connects to bucket in region. A non-empty endpoint selects
// an S3-compatible service (MinIO and similar) and switches to path-style
// addressing, which those services expect.
func NewS3Destination(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// ObjectKey returns the bucket key an export of table lands under. Exports
// overwrite in place; the object always holds the latest snapshot of its
// table.
func (d *S3Destination) ObjectKey(table string) string {
	name := table + ".jsonl"
	if d.prefix == "" {
		return name
	}
	return strings.TrimSuffix(d.prefix, "/") + "/" + name
}

func (d *S3Destination) Store(ctx context.Context, table string, r io.Reader) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.ObjectKey(table)),
		Body:        r,
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("upload %s export: %w", table, err)
	}
	return nil
}
