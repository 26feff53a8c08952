package s3

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

type Client struct {
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
}

type ClientArgs struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// PublicBaseURL prefixes returned object URLs. Defaults to Endpoint.
	PublicBaseURL string
}

func NewClient(ctx context.Context, args ClientArgs) (*Client, error) {
	const op = "s3.NewClient"
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(args.AccessKey, args.SecretKey, "")),
		config.WithRegion(args.Region),
		config.WithBaseEndpoint(args.Endpoint),
	)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}

	publicBaseURL := args.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = args.Endpoint
	}

	return &Client{
		s3Client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true // MinIO
		}),
		bucket:        args.Bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (c *Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	const op = "s3.Client.UploadFile"
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	return errorx.Wrap(err, op)
}

func (c *Client) DeleteFile(ctx context.Context, key string) error {
	const op = "s3.Client.DeleteFile"
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return errorx.Wrap(err, op)
}

func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	const op = "s3.Client.GetObject"
	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}
	defer func() {
		if cerr := output.Body.Close(); cerr != nil {
			slog.Warn("failed to close S3 object body", slog.String("error", cerr.Error()))
		}
	}()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}

	return data, nil
}

// CreateBucket is idempotent: a bucket this client already owns is not an error.
func (c *Client) CreateBucket(ctx context.Context) error {
	const op = "s3.CreateBucket"
	_, err := c.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return errorx.Wrap(err, op)
	}
	return nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectURL is the public address of key: <publicBaseURL>/<bucket>/<key>.
func (c *Client) ObjectURL(key string) string {
	return c.publicBaseURL + "/" + c.bucket + "/" + key
}

// KeyFromURL reverses ObjectURL. It reports false for URLs of another bucket or host.
func (c *Client) KeyFromURL(url string) (string, bool) {
	prefix := c.publicBaseURL + "/" + c.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
