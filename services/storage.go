package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"talent_flow_app_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// StorageProvider abstracts where uploaded documents live. The server runs
// against Cloudflare R2 when credentials are configured and a local upload
// directory otherwise, so handlers never branch on the backend.
type StorageProvider interface {
	Upload(ctx context.Context, file *multipart.FileHeader, key string) (*StorageResult, error)
	UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error)
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	GetPublicURL(key string) string
	IsConfigured() bool
}

// StorageResult describes a stored blob.
type StorageResult struct {
	Key              string
	FileName         string
	FileOriginalName string
	FileSize         int64
	MimeType         string
	URL              string
}

// Storage is the process-wide storage backend, set by InitializeStorage.
var Storage StorageProvider

// InitializeStorage picks the storage backend. R2 is used only when the full
// credential set is present and the bucket answers a HeadBucket probe;
// anything short of that falls back to the local upload directory.
func InitializeStorage(cfg *config.Config) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Printf("Storage ready (local filesystem: %s)", cfg.UploadDir)
		return
	}

	r2, err := connectR2(cfg)
	if err != nil {
		log.Printf("[WARNING] R2 unavailable (%v), using local storage instead", err)
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Printf("Storage ready (local filesystem fallback: %s)", cfg.UploadDir)
		return
	}

	Storage = r2
	log.Printf("Storage ready (Cloudflare R2, bucket %s)", cfg.R2BucketName)
}

func connectR2(cfg *config.Config) (*R2Storage, error) {
	r2, err := NewR2Storage(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r2.bucket)}); err != nil {
		return nil, fmt.Errorf("bucket probe failed: %w", err)
	}

	return r2, nil
}

// mimeByExt maps the upload allowlist extensions to content types for
// backends that do not store one (local files).
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
}

func contentTypeForKey(key string) string {
	if ct, ok := mimeByExt[strings.ToLower(filepath.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func multipartContentType(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// LocalStorage writes blobs under a base directory, mirroring the storage
// key as a relative path.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// IsConfigured is always true for local storage.
func (l *LocalStorage) IsConfigured() bool {
	return true
}

func (l *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader, key string) (*StorageResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return l.UploadReader(ctx, src, key, multipartContentType(file), file.Size)
}

func (l *LocalStorage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error) {
	path := filepath.Join(l.baseDir, key)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StorageResult{
		Key:      key,
		FileName: filepath.Base(key),
		FileSize: written,
		MimeType: contentType,
		URL:      l.GetPublicURL(key),
	}, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	return file, contentTypeForKey(key), nil
}

// GetSignedURL on local storage has nothing to sign; it answers the plain path.
func (l *LocalStorage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return l.GetPublicURL(key), nil
}

func (l *LocalStorage) GetPublicURL(key string) string {
	return "/" + filepath.Join(l.baseDir, key)
}

// R2Storage stores blobs in a Cloudflare R2 bucket through the S3 API.
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewR2Storage builds the S3 client against the account's R2 endpoint. R2
// wants path-style addressing and the pseudo-region "auto".
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
	}, nil
}

func (r *R2Storage) IsConfigured() bool {
	return r.client != nil && r.bucket != ""
}

func (r *R2Storage) Upload(ctx context.Context, file *multipart.FileHeader, key string) (*StorageResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return r.UploadReader(ctx, src, key, multipartContentType(file), file.Size)
}

func (r *R2Storage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}

	return &StorageResult{
		Key:      key,
		FileName: filepath.Base(key),
		FileSize: size,
		MimeType: contentType,
		URL:      r.GetPublicURL(key),
	}, nil
}

func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := aws.ToString(obj.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return obj.Body, contentType, nil
}

func (r *R2Storage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}

	return req.URL, nil
}

// GetPublicURL answers the bucket's public base URL joined with the key, or
// empty when the bucket is private (callers then use GetSignedURL).
func (r *R2Storage) GetPublicURL(key string) string {
	if r.publicURL == "" {
		return ""
	}
	return strings.TrimSuffix(r.publicURL, "/") + "/" + key
}

// GenerateStorageKey builds a collision-safe key: {prefix}/{uuid}_{unix}{ext}.
// The original filename contributes only its extension so client-supplied
// names never reach the backend.
func GenerateStorageKey(prefix string, originalFilename string) string {
	name := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), filepath.Ext(originalFilename))
	return filepath.Join(prefix, name)
}

// GenerateClientDocumentKey creates a storage key for client-level documents.
func GenerateClientDocumentKey(clientID, originalFilename string) string {
	return GenerateStorageKey(fmt.Sprintf("clients/%s", clientID), originalFilename)
}

// GenerateCaseDocumentKey creates a storage key for case documents.
func GenerateCaseDocumentKey(clientID, caseID, originalFilename string) string {
	return GenerateStorageKey(fmt.Sprintf("clients/%s/cases/%s", clientID, caseID), originalFilename)
}

// GenerateContractDocumentKey creates a storage key for contract attachments.
func GenerateContractDocumentKey(clientID, contractID, originalFilename string) string {
	return GenerateStorageKey(fmt.Sprintf("clients/%s/contracts/%s", clientID, contractID), originalFilename)
}
