package s3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

// S3 stores archives in a bucket; the URL host is the bucket and its path the key prefix.
type S3 struct {
	url url.URL
	// pathStyle option is not really used, but may be required
	// at some point; see https://aws.amazon.com/blogs/aws/amazon-s3-path-deprecation-plan-the-rest-of-the-story/
	pathStyle       bool
	region          string
	endpoint        string
	accessKeyId     string
	secretAccessKey string
}

type Option func(s *S3)

func WithPathStyle() Option {
	return func(s *S3) {
		s.pathStyle = true
	}
}
func WithRegion(region string) Option {
	return func(s *S3) {
		s.region = region
	}
}
func WithEndpoint(endpoint string) Option {
	return func(s *S3) {
		s.endpoint = endpoint
	}
}
func WithAccessKeyId(accessKeyId string) Option {
	return func(s *S3) {
		s.accessKeyId = accessKeyId
	}
}
func WithSecretAccessKey(secretAccessKey string) Option {
	return func(s *S3) {
		s.secretAccessKey = secretAccessKey
	}
}

func New(u url.URL, opts ...Option) *S3 {
	s := &S3{url: u}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *S3) Pull(ctx context.Context, source, target string, logger *log.Entry) (int64, error) {
	bucket, key := s.url.Hostname(), s.key(source)
	client, err := s.getClient(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load AWS config: %v", err)
	}

	// Create a downloader with the client and default options
	downloader := manager.NewDownloader(client)

	// Create a file to write the S3 Object contents to.
	f, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("failed to create target file %q, %v", target, err)
	}
	defer f.Close()

	// Write the contents of S3 Object to the file
	logger.Debugf("downloading s3://%s/%s", bucket, key)
	n, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("object %s in bucket %s: %w", key, bucket, fs.ErrNotExist)
		}
		return 0, fmt.Errorf("failed to download file, %v", err)
	}
	return n, nil
}

// isNotFound reports whether err is the service saying the object does not exist.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
}

func (s *S3) Push(ctx context.Context, target, source string, logger *log.Entry) (int64, error) {
	bucket, key := s.url.Hostname(), s.key(target)
	client, err := s.getClient(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load AWS config: %v", err)
	}
	// Create an uploader with the client and default options
	uploader := manager.NewUploader(client)

	f, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("failed to read input file %q, %v", source, err)
	}
	defer f.Close()
	countingReader := NewCountingReader(f)

	// Write the contents of the file to the S3 object
	logger.Debugf("uploading %s to s3://%s/%s", source, bucket, key)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   countingReader,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload file, %v", err)
	}
	return countingReader.Bytes(), nil
}

func (s *S3) Clean(filename string) string {
	return filename
}

func (s *S3) Protocol() string {
	return "s3"
}

func (s *S3) URL() string {
	return s.url.String()
}

// key returns the object key for name under the URL path, without a leading slash.
func (s *S3) key(name string) string {
	return strings.TrimPrefix(path.Join(s.url.Path, name), "/")
}

func (s *S3) getClient(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if s.region != "" {
		opts = append(opts, config.WithRegion(s.region))
	}
	if s.accessKeyId != "" || s.secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKeyId, s.secretAccessKey, ""),
		))
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		opts = append(opts, config.WithClientLogMode(aws.LogRequestWithBody|aws.LogResponse))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	endpoint := getEndpoint(s.endpoint)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s.pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// only send checksums when an operation requires them, which S3-compatible servers expect
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	}), nil
}

func getEndpoint(endpoint string) string {
	// for some reason, the lookup gets flaky when the endpoint is 127.0.0.1
	// so you have to set it to localhost explicitly.
	e := endpoint
	u, err := url.Parse(endpoint)
	if err == nil {
		if u.Hostname() == "127.0.0.1" {
			port := u.Port()
			u.Host = "localhost"
			if port != "" {
				u.Host += ":" + port
			}
			e = u.String()
		}
	}
	return e
}
