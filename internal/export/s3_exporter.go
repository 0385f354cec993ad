package export

import (
	"bytes"
	"context"
	"fmt"

	"promokiosk/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Exporter implements Exporter by uploading CSV reports to AWS S3.
type s3Exporter struct {
	client *s3.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Exporter creates a new S3-based report exporter.
func NewS3Exporter(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Exporter, error) {
	logger = logger.With().Str("component", "s3-report-exporter").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 exporter initialised")

	return &s3Exporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

// ExportStoresMonthly uploads the per-store report for the given month
// (formatted "2006-01") and returns the object key.
func (e *s3Exporter) ExportStoresMonthly(ctx context.Context, asOfMonth string, stats []model.StoreMonthlyStats) (string, error) {
	data, err := encodeStoresMonthlyCSV(stats)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%sstores-%s.csv", e.prefix, asOfMonth)

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("bucket", e.bucket).
			Str("key", key).
			Msg("failed to upload report to S3")
		return "", fmt.Errorf("failed to upload report to S3 (bucket=%s, key=%s): %w", e.bucket, key, err)
	}

	e.logger.Info().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("rows", len(stats)).
		Msg("report uploaded to S3")

	return key, nil
}
