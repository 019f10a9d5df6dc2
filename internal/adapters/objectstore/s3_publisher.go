package objectstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ghalamif/mcap2mat/internal/ports"
)

const matContentType = "application/x-matlab-data"

type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads a finished output file to a fixed bucket and key.
type S3Publisher struct {
	bucket string
	key    string
	api    putObjectAPI
}

func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, errors.New("s3 bucket and key required")
	}
	if cfg.Region == "" {
		return nil, errors.New("s3 region required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3PublisherWithAPI(cfg.Bucket, cfg.Key, client), nil
}

func newS3PublisherWithAPI(bucket, key string, api putObjectAPI) *S3Publisher {
	return &S3Publisher{bucket: bucket, key: key, api: api}
}

func (p *S3Publisher) Publish(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(p.key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(matContentType),
	})
	if err != nil {
		return fmt.Errorf("put object s3://%s/%s: %w", p.bucket, p.key, err)
	}
	return nil
}

// Location returns the s3:// URL the file is published to.
func (p *S3Publisher) Location() string {
	return "s3://" + p.bucket + "/" + p.key
}

var _ ports.Publisher = (*S3Publisher)(nil)
