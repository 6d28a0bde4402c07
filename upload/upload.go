package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vingenuity/obsup/service"
	"github.com/vingenuity/obsup/types"
)

// Uploader pushes converted recordings into the service staging bucket.
type Uploader struct {
	Logger  *slog.Logger
	Client  *s3.Client
	Bucket  string
	RunID   string
	Service service.Service
}

// InitAWSClient builds an S3 client from static env credentials. The
// AWS_*_S3 variables come from the environment or a .env file loaded at
// startup.
func InitAWSClient(ctx context.Context) (*s3.Client, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID_S3")
	secretAccessKey := os.Getenv("AWS_SECRET_ACCESS_KEY_S3")
	region := os.Getenv("REGION")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretAccessKey, "")))
	if err != nil {
		return nil, fmt.Errorf("could not load AWS config from env: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ObjectKey maps a local file onto its staging key:
// <service>/<run-id>/<filename>.
func ObjectKey(svc service.Service, runID, file string) string {
	return path.Join(svc.String(), runID, filepath.Base(file))
}

// ContentType returns the MIME type for a converted file.
func ContentType(file string) string {
	switch filepath.Ext(file) {
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// UploadAll uploads every file, collecting per-file failures the same way
// conversion does.
func (u *Uploader) UploadAll(ctx context.Context, files []string) []types.Result {
	results := make([]types.Result, len(files))
	for i, file := range files {
		err := u.uploadOne(ctx, file)
		results[i] = types.Result{Input: file, Output: ObjectKey(u.Service, u.RunID, file), Err: err}
	}
	return results
}

func (u *Uploader) uploadOne(ctx context.Context, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", file, err)
	}
	defer f.Close()

	key := ObjectKey(u.Service, u.RunID, file)
	u.Logger.Info("uploading", "file", file, "bucket", u.Bucket, "key", key)

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.Bucket,
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(file)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file %s: %w", file, err)
	}
	return nil
}
