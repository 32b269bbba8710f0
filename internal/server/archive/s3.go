// Package archive ships finalized monthly results to S3-compatible object
// storage so period history survives outside the database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Config holds the object-storage connection settings. An empty endpoint
// disables archiving.
type Config struct {
	BaseEndpoint string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
}

type S3Uploader struct {
	cfg Config
	log logging.Logger
}

func NewS3Uploader(cfg Config, log logging.Logger) *S3Uploader {
	return &S3Uploader{cfg: cfg, log: log}
}

// Enabled reports whether an endpoint is configured.
func (u *S3Uploader) Enabled() bool {
	return u.cfg.BaseEndpoint != ""
}

func (u *S3Uploader) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.AccessKey,
			u.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.cfg.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// StorageKey returns the object key a period's archive is stored under.
func StorageKey(year int, month time.Month) string {
	return fmt.Sprintf("results/%d/%02d.json", year, int(month))
}

// UploadMonthlyResult stores the result as JSON under its period key.
func (u *S3Uploader) UploadMonthlyResult(ctx context.Context, result *models.MonthlyResult) error {
	client, err := u.client(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	key := StorageKey(result.Year, result.Month)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	u.log.Info(ctx, "monthly result archived", "bucket", u.cfg.Bucket, "key", key)
	return nil
}
