package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	s3Client *s3.Client
	bucket   string
	region   string
)

// InitStorage builds the S3 client. Static credentials from the environment
// take precedence so the same code works against S3-compatible stores.
func InitStorage(bucketName, awsRegion string) error {
	bucket = bucketName
	region = awsRegion

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, os.Getenv("AWS_SECRET_ACCESS_KEY"), ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

func objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

// UploadBuffer stores a processed image buffer under the given key prefix
// and returns the public URL.
func UploadBuffer(buf *bytes.Buffer, contentType, prefix, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	_, err := s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return objectURL(key), nil
}

// UploadPlanFile streams a plan archive (PDF/DWG/ZIP) without re-encoding.
func UploadPlanFile(file *multipart.FileHeader, planID uint) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := fmt.Sprintf("plans/%d/%d_%s", planID, time.Now().Unix(), filepath.Base(file.Filename))

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return objectURL(key), nil
}

// DeleteObject removes a stored asset by its public URL.
func DeleteObject(assetURL string) error {
	parts := strings.Split(assetURL, "/")
	if len(parts) < 4 {
		return fmt.Errorf("malformed asset URL: %s", assetURL)
	}
	key := strings.Join(parts[3:], "/")

	_, err := s3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	return err
}
