// Package publish uploads a finished run's output directory to S3-compatible
// object storage.
package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/navigator/internal/manifest"
	"github.com/nvandessel/navigator/internal/pathutil"
)

// maxParallelUploads bounds concurrent PutObject calls.
const maxParallelUploads = 4

// Putter is the subset of the S3 client the publisher uses.
type Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds the publish target.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (MinIO, LocalStack)
	Prefix   string // Optional key prefix
}

// S3Publisher uploads run outputs under <prefix>/<run_id>/.
type S3Publisher struct {
	client Putter
	bucket string
	prefix string
}

// NewS3Publisher loads the default AWS configuration and creates a
// publisher for cfg.
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("publish: bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	})
	return NewPublisher(client, cfg.Bucket, cfg.Prefix), nil
}

// NewPublisher creates a publisher over an existing client.
func NewPublisher(client Putter, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a file of the given run.
func (p *S3Publisher) Key(runID, name string) string {
	return path.Join(p.prefix, runID, filepath.ToSlash(name))
}

// Publish uploads every file listed in m from dir, then the manifest itself,
// so a manifest present in the bucket always describes a complete upload.
// It returns the uploaded keys in manifest order.
func (p *S3Publisher) Publish(ctx context.Context, dir string, m *manifest.Manifest) ([]string, error) {
	keys := make([]string, len(m.Files))
	files := make([]string, len(m.Files))
	for i, f := range m.Files {
		file, err := pathutil.Within(dir, f.Path)
		if err != nil {
			return nil, err
		}
		files[i] = file
		keys[i] = p.Key(m.RunID, f.Path)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, f := range m.Files {
		g.Go(func() error {
			return p.put(gctx, files[i], keys[i], f.Checksum)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifestKey := p.Key(m.RunID, manifest.FileName)
	if err := p.put(ctx, filepath.Join(dir, manifest.FileName), manifestKey, ""); err != nil {
		return nil, err
	}
	return append(keys, manifestKey), nil
}

func (p *S3Publisher) put(ctx context.Context, file, key, checksum string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(file)),
	}
	if checksum != "" {
		input.Metadata = map[string]string{"sha256": strings.TrimPrefix(checksum, "sha256:")}
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put failed for %s: %w", key, err)
	}
	return nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".parquet":
		return "application/vnd.apache.parquet"
	case ".jsonl":
		return "application/x-ndjson"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
