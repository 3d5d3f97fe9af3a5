package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/models"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SpacesClient exports reports to an S3-compatible bucket.
type SpacesClient struct {
	client objectAPI
	bucket string
	prefix string
}

func NewSpacesClient(ctx context.Context, cfg config.StorageConfig) (*SpacesClient, error) {
	if !cfg.Enabled() {
		return nil, errors.New("no export bucket configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load storage config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newSpacesClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newSpacesClient(client objectAPI, bucket, prefix string) *SpacesClient {
	return &SpacesClient{client: client, bucket: bucket, prefix: prefix}
}

// ReportKey is the object key a report is stored under.
func (s *SpacesClient) ReportKey(report *models.Report, ext string) string {
	day := report.CreatedAt.UTC().Format("2006-01-02")
	return path.Join(s.prefix, day, string(report.VideoID), report.ID+ext)
}

// SaveReport uploads the report as JSON and returns its key.
func (s *SpacesClient) SaveReport(ctx context.Context, report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal report")
	}
	key := s.ReportKey(report, ".json")
	return key, s.put(ctx, key, "application/json", data)
}

// SaveRendered uploads an already rendered copy of the report, such as Markdown.
func (s *SpacesClient) SaveRendered(ctx context.Context, report *models.Report, ext, contentType string, body []byte) (string, error) {
	key := s.ReportKey(report, ext)
	return key, s.put(ctx, key, contentType, body)
}

func (s *SpacesClient) put(ctx context.Context, key, contentType string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "upload %s", key)
	}
	return nil
}
