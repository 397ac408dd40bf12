package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"restaurant-pos/internal/config"
)

type ArchiverInterface interface {
	Archive(ctx context.Context, orderNumber string, pdf []byte) (string, error)
}

// Uploader is satisfied by *s3manager.Uploader.
type Uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type S3Archiver struct {
	up     Uploader
	bucket string
	prefix string
}

func NewS3Archiver(cfg config.ReceiptsConfig) (*S3Archiver, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("receipts s3 bucket is not configured")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.S3Region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewArchiver(s3manager.NewUploader(sess), cfg.S3Bucket, cfg.KeyPrefix), nil
}

func NewArchiver(up Uploader, bucket, prefix string) *S3Archiver {
	return &S3Archiver{up: up, bucket: bucket, prefix: prefix}
}

func (a *S3Archiver) Key(orderNumber string) string {
	return a.prefix + orderNumber + ".pdf"
}

// Archive uploads the PDF and returns the object location.
func (a *S3Archiver) Archive(ctx context.Context, orderNumber string, pdf []byte) (string, error) {
	out, err := a.up.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(orderNumber)),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("upload receipt %s: %w", orderNumber, err)
	}
	return out.Location, nil
}
