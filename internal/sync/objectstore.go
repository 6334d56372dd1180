package sync

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// RemoteObject is one entry returned by ObjectStore.ListObjects.
type RemoteObject struct {
	Key          string
	Etag         string // quotes already stripped
	Size         int64
	LastModified time.Time
}

// ObjectStore is the remote collaborator contract the sync engine drives:
// paginated listing plus get/put of individual keys. An interface so the
// engine can be exercised against a fake in tests without a live bucket.
type ObjectStore interface {
	ListObjects(ctx context.Context, bucket string) ([]RemoteObject, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
	PutObject(ctx context.Context, bucket, key string, body io.Reader) (etag string, err error)
}

// S3ObjectStore implements ObjectStore against AWS S3 (or an S3-compatible
// endpoint, e.g. for local testing against a minio instance).
type S3ObjectStore struct {
	client *s3.Client
}

// NewS3ObjectStore builds an S3ObjectStore from the ambient AWS credential
// chain, optionally pointed at a custom endpoint (empty string uses AWS's
// default endpoint resolution).
func NewS3ObjectStore(ctx context.Context, region, endpoint string) (*S3ObjectStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ObjectStore{client: client}, nil
}

// ListObjects pages through the bucket's contents with ListObjectsV2 until
// exhausted, converting each entry's etag (stripping surrounding quotes)
// and last-modified timestamp into a RemoteObject.
func (s *S3ObjectStore) ListObjects(ctx context.Context, bucket string) ([]RemoteObject, error) {
	var out []RemoteObject
	var marker *string

	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("listing objects in %s: %w", bucket, err)
		}

		for _, obj := range resp.Contents {
			out = append(out, RemoteObject{
				Key:          aws.ToString(obj.Key),
				Etag:         strings.Trim(aws.ToString(obj.ETag), `"`),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}

		if !aws.ToBool(resp.IsTruncated) {
			return out, nil
		}
		marker = resp.NextContinuationToken
	}
}

// GetObject streams one object's body, returning its etag alongside it.
func (s *S3ObjectStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("getting %s/%s: %w", bucket, key, err)
	}
	return resp.Body, strings.Trim(aws.ToString(resp.ETag), `"`), nil
}

// PutObject uploads body under key and returns the server's etag for the
// caller to verify against the local digest.
func (s *S3ObjectStore) PutObject(ctx context.Context, bucket, key string, body io.Reader) (string, error) {
	resp, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("putting %s/%s: %w", bucket, key, err)
	}
	return strings.Trim(aws.ToString(resp.ETag), `"`), nil
}
