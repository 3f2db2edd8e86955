package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/MiteshDarda/pw-genius/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Storage implements the FileStorage interface using an S3-compatible backend.
// All configuration (region, bucket, credentials) is injected at construction;
// there are no ambient singletons.
type s3Storage struct {
	client     *s3.Client
	bucketName string
	region     string
	endpoint   string
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(cfg config.S3Config) (FileStorage, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fall back to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for S3: %v", err)
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		// Path-style addressing required by most S3-compatible services
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	log.Printf("S3 Storage Service initialized for endpoint: %s, bucket: %s", cfg.Endpoint, cfg.BucketName)

	return &s3Storage{
		client:     s3Client,
		bucketName: cfg.BucketName,
		region:     cfg.Region,
		endpoint:   cfg.Endpoint,
	}, nil
}

// Upload stores the object and returns the URL it will be retrievable from.
func (s *s3Storage) Upload(ctx context.Context, objectKey string, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("ERROR: Failed to upload object '%s' to bucket '%s': %v", objectKey, s.bucketName, err)
		return "", err
	}

	fileURL := s.objectURL(objectKey)
	log.Printf("INFO: Uploaded object '%s' to bucket '%s' (%s)", objectKey, s.bucketName, fileURL)
	return fileURL, nil
}

// Download fetches a previously stored object by its URL.
func (s *s3Storage) Download(ctx context.Context, fileURL string) ([]byte, error) {
	objectKey, err := s.objectKeyFromURL(fileURL)
	if err != nil {
		return nil, err
	}

	response, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Printf("ERROR: Failed to download object '%s' from bucket '%s': %v", objectKey, s.bucketName, err)
		return nil, err
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Downloaded object '%s' (%d bytes)", objectKey, len(data))
	return data, nil
}

// Delete removes an object from the S3 bucket.
func (s *s3Storage) Delete(ctx context.Context, fileURL string) error {
	objectKey, err := s.objectKeyFromURL(fileURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Printf("ERROR: Failed to delete object '%s' from bucket '%s': %v", objectKey, s.bucketName, err)
		return err
	}

	log.Printf("INFO: Deleted object '%s' from bucket '%s'", objectKey, s.bucketName)
	return nil
}

// objectURL builds the stored URL for a key: path-style against a custom
// endpoint, virtual-hosted against AWS proper.
func (s *s3Storage) objectURL(objectKey string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucketName, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, objectKey)
}

// objectKeyFromURL reverses objectURL, accepting both addressing styles.
func (s *s3Storage) objectKeyFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("invalid object URL %q: %w", fileURL, err)
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	// Path-style URLs carry the bucket as the first path segment
	if !strings.HasPrefix(parsed.Host, s.bucketName+".") {
		key = strings.TrimPrefix(key, s.bucketName+"/")
	}
	if key == "" {
		return "", fmt.Errorf("object URL %q has no key", fileURL)
	}
	return key, nil
}
