package evidence

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store accepts an uploaded odometer photo and returns an opaque URI. The
// core never interprets the image; it only stores and forwards the URI.
type Store interface {
	Put(ctx context.Context, body io.Reader, contentType string) (string, error)
}

// S3Client defines the interface for the AWS S3 client.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores evidence photos in an S3 bucket, keyed by upload date and
// a random id.
type S3Store struct {
	client S3Client
	bucket string
}

func NewS3Store(client S3Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Put(ctx context.Context, body io.Reader, contentType string) (string, error) {
	tracer := otel.Tracer("evidence-store")
	ctx, span := tracer.Start(ctx, "put_evidence", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	key := fmt.Sprintf("%s/%s", time.Now().UTC().Format("2006/01/02"), uuid.NewString())
	span.SetAttributes(attribute.String("app.evidenceKey", key))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store evidence object: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
