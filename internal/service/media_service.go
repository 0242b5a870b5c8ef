package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/maheshrc27/postpilot/configs"
)

// MediaService uploads locally rendered infographics to Cloudflare R2 so the
// approval request can attach a public media URL. WhatsApp cannot fetch a
// path on this machine's disk.
type MediaService struct {
	config cfg.Config
}

func NewMediaService(cfg cfg.Config) *MediaService {
	return &MediaService{config: cfg}
}

// Enabled reports whether R2 credentials are configured. Without them posts
// are queued with their local image path and the approval request goes out
// text-only.
func (m *MediaService) Enabled() bool {
	return m.config.R2.AccountID != "" && m.config.R2.BucketName != ""
}

func (m *MediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.config.R2.AccessKey, m.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load R2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.config.R2.AccountID))
	}), nil
}

// UploadImage pushes the image at localPath to the bucket and returns its
// public URL. Only known image types are accepted.
func (m *MediaService) UploadImage(ctx context.Context, localPath string) (string, error) {
	file, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", localPath, err)
	}

	fileType, err := filetype.Match(file)
	if err != nil || fileType == types.Unknown {
		return "", fmt.Errorf("unrecognized image type for %s", localPath)
	}
	if !filetype.IsImage(file) {
		return "", fmt.Errorf("file %s is not an image (%s)", localPath, fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key = fmt.Sprintf("%s.%s", key, fileType.Extension)

	client, err := m.r2Client(ctx)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(m.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(fileType.MIME.Value),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("upload image: %w", err)
	}

	return fmt.Sprintf("%s/%s", m.config.R2.PublicBaseURL, key), nil
}
