package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"
	"github.com/musiclib/backend/internal/config"
	"go.uber.org/zap"
)

// S3Service stores audio in an S3-compatible bucket and hands out
// presigned GET URLs.
type S3Service struct {
	client *s3.Client
	cfg    *config.Config
	log    *zap.Logger
}

func NewS3Service(cfg *config.Config, log *zap.Logger) (*S3Service, error) {
	client, err := buildClient(cfg.MediaS3Endpoint, cfg.MediaS3Region, cfg.MediaS3AccessKeyID, cfg.MediaS3SecretAccessKey, cfg.MediaS3UsePathStyle, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init s3 client: %w", err)
	}
	return &S3Service{client: client, cfg: cfg, log: log.Named("s3")}, nil
}

func buildClient(endpoint, region, key, secret string, pathStyle bool, log *zap.Logger) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithLogger(logging.LoggerFunc(func(classification logging.Classification, format string, v ...interface{}) {
			log.Debug(fmt.Sprintf(format, v...), zap.String("classification", string(classification)))
		})),
	}
	if key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}

func (s *S3Service) Put(ctx context.Context, key string, data []byte, contentType string) error {
	uploader := manager.NewUploader(s.client, func(u *manager.Uploader) { u.PartSize = 10 * 1024 * 1024 })
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.MediaAudioBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.MediaAudioBucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Service) Locate(ctx context.Context, key string) (BlobLocation, error) {
	presigner := s3.NewPresignClient(s.client)
	out, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.MediaAudioBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.AudioURLTTL))
	if err != nil {
		return BlobLocation{}, fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return BlobLocation{URL: out.URL}, nil
}
