// Package storage provides S3 operations: presigned upload URLs and JSON
// document read/write for video metadata and analysis results.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const (
	// UploadExpire is the lifetime of presigned upload URLs.
	UploadExpire = time.Hour
	// FolderVideos is the S3 prefix for uploaded video objects.
	FolderVideos = "videos"
	// FolderAnalysis is the S3 prefix for normalized analysis documents.
	FolderAnalysis = "analysis"
	// FolderVideoMetadata is the S3 prefix for video metadata records.
	FolderVideoMetadata = "metadata/videos"
	// FolderAnalysisMetadata is the S3 prefix for analysis job records.
	FolderAnalysisMetadata = "metadata/analysis"
	// FolderJobOutput is the S3 prefix for Data Automation job output.
	FolderJobOutput = "data-automation-results"
)

// resultFallbackPrefixes are legacy analysis document locations, tried in
// order when the primary key is absent.
var resultFallbackPrefixes = []string{
	"analysis-results",
	"data-automation-results",
	"results",
}

// Config holds S3 client configuration.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// LoadAWSConfig builds an aws.Config from explicit credentials when set,
// falling back to the default credential chain.
func LoadAWSConfig(ctx context.Context, cfg Config, logger *zap.Logger) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else if logger != nil {
		logger.Info("using default AWS credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// Client provides S3 operations against the configured bucket.
type Client struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// New creates an S3 storage client.
func New(awsCfg aws.Config, bucket string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		logger: logger,
	}
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string { return c.bucket }

// VideoKey returns the upload key: videos/{random}/{filename}. The random
// segment prevents collisions between identically named uploads.
func VideoKey(random, filename string) string {
	return path.Join(FolderVideos, random, path.Base(filename))
}

// AnalysisResultKey returns the primary analysis document key.
func AnalysisResultKey(videoID string) string {
	return path.Join(FolderAnalysis, videoID, "results.json")
}

// VideoMetadataKey returns the video metadata record key.
func VideoMetadataKey(videoID string) string {
	return path.Join(FolderVideoMetadata, videoID+".json")
}

// AnalysisMetadataKey returns the analysis job record key.
func AnalysisMetadataKey(videoID string) string {
	return path.Join(FolderAnalysisMetadata, videoID+".json")
}

// JobOutputPrefix returns a fresh output prefix for a Data Automation job.
func JobOutputPrefix(jobName string) string {
	return FolderJobOutput + "/" + jobName + "/"
}

// ParseS3URI splits s3://bucket/key into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed s3 uri: %s", uri)
	}
	return parts[0], parts[1], nil
}

// URIFor returns the fully qualified s3:// location for a key in the
// configured bucket.
func (c *Client) URIFor(key string) string {
	return fmt.Sprintf("s3://%s/%s", c.bucket, key)
}

// GeneratePresignedUploadURL returns a pre-signed PUT URL for direct upload.
func (c *Client) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(c.client)
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

// PutJSON serializes v and writes it at key, fully replacing any previous
// document.
func (c *Client) PutJSON(ctx context.Context, key string, v interface{}) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(string(body)),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// GetJSON reads and parses the document at key in the configured bucket.
func (c *Client) GetJSON(ctx context.Context, key string, out interface{}) error {
	return c.getJSON(ctx, c.bucket, key, out)
}

// GetJSONByURI reads and parses a document addressed by full s3:// URI.
// Used for job outputs, which may live under a different prefix than the
// documents this service writes.
func (c *Client) GetJSONByURI(ctx context.Context, uri string, out interface{}) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	return c.getJSON(ctx, bucket, key, out)
}

func (c *Client) getJSON(ctx context.Context, bucket, key string, out interface{}) error {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	return nil
}

// IsNotFound reports whether err is an S3 missing-key error.
func IsNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

// FetchAnalysisDocument reads the analysis document for a video, trying the
// primary key first and then the legacy fallback paths in fixed order.
func (c *Client) FetchAnalysisDocument(ctx context.Context, videoID string, out interface{}) error {
	primary := AnalysisResultKey(videoID)
	err := c.GetJSON(ctx, primary, out)
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return err
	}
	for _, prefix := range resultFallbackPrefixes {
		key := path.Join(prefix, videoID, "results.json")
		ferr := c.GetJSON(ctx, key, out)
		if ferr == nil {
			c.logger.Info("analysis document found at fallback path", zap.String("key", key))
			return nil
		}
		if !IsNotFound(ferr) {
			c.logger.Warn("fallback path read failed", zap.String("key", key), zap.Error(ferr))
		}
	}
	return err
}

// ListVideoMetadata returns parsed video metadata records, up to limit.
func (c *Client) ListVideoMetadata(ctx context.Context, limit int32) ([]json.RawMessage, error) {
	resp, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(FolderVideoMetadata + "/"),
		MaxKeys: aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list video metadata: %w", err)
	}
	out := make([]json.RawMessage, 0, len(resp.Contents))
	for _, obj := range resp.Contents {
		var doc json.RawMessage
		if err := c.GetJSON(ctx, aws.ToString(obj.Key), &doc); err != nil {
			c.logger.Warn("skipping unreadable metadata record", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}
