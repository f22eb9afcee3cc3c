package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Options struct {
	Region    string
	Bucket    string
	Endpoint  string // set for S3-compatible stores; enables path-style addressing
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from; defaults to the AWS virtual host
}

type S3 struct {
	client *s3.Client
	o      S3Options
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
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
	return &S3{client: client, o: o}, nil
}

func (s *S3) Upload(ctx context.Context, _ string, data []byte, contentType string) (string, error) {
	key := objectKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.o.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return publicURL(s.o, key), nil
}

func objectKey() string { return "listings/" + uuid.NewString() + ".jpg" }

func publicURL(o S3Options, key string) string {
	if o.PublicURL != "" {
		return strings.TrimRight(o.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", o.Bucket, o.Region, key)
}
