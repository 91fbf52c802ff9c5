package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"classifieds/internal/domain"

	"github.com/google/uuid"
)

// File is an upload held in memory. Limits cap it at 10 MB.
type File struct {
	Name string
	Data []byte
}

// Object is a stored file.
type Object struct {
	Bucket   Bucket `json:"bucket"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type Signer interface {
	SignObject(bucket, path string, ttl time.Duration) (string, time.Time, error)
	VerifyObject(token, bucket, path string) error
}

// Service stores objects on local disk under baseDir/<bucket>/<path>.
type Service struct {
	baseDir    string
	publicBase string
	signer     Signer
}

func NewService(baseDir, publicBase string, signer Signer) *Service {
	return &Service{
		baseDir:    baseDir,
		publicBase: strings.TrimRight(publicBase, "/"),
		signer:     signer,
	}
}

// ReadMultipart loads an uploaded form file, refusing it early when the
// declared size already exceeds the kind's limit.
func ReadMultipart(fh *multipart.FileHeader, kind Kind) (File, error) {
	limit := Limits[kind]
	if fh.Size > limit.MaxBytes {
		return File{}, tooLarge(limit)
	}
	f, err := fh.Open()
	if err != nil {
		return File{}, &domain.UploadError{Reason: "cannot read upload", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit.MaxBytes+1))
	if err != nil {
		return File{}, &domain.UploadError{Reason: "cannot read upload", Err: err}
	}
	return File{Name: fh.Filename, Data: data}, nil
}

// Detect validates size and content type against kind and returns the
// sniffed MIME type.
func Detect(kind Kind, f File) (string, error) {
	limit, ok := Limits[kind]
	if !ok {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}
	if len(f.Data) == 0 {
		return "", &domain.UploadError{Reason: "file is empty"}
	}
	if int64(len(f.Data)) > limit.MaxBytes {
		return "", tooLarge(limit)
	}
	mimeType := strings.Split(http.DetectContentType(f.Data), ";")[0]
	if _, ok := limit.Types[mimeType]; !ok {
		return "", &domain.UploadError{Reason: fmt.Sprintf("file type %s is not allowed", mimeType), BadType: true}
	}
	return mimeType, nil
}

func tooLarge(l Limit) error {
	return &domain.UploadError{Reason: fmt.Sprintf("file exceeds %d MB", l.MaxBytes/mb), TooLarge: true}
}

// Put validates f and writes it under bucket/prefix with a generated name.
func (s *Service) Put(ctx context.Context, bucket Bucket, prefix string, kind Kind, f File) (*Object, error) {
	mimeType, err := Detect(kind, f)
	if err != nil {
		return nil, err
	}
	name := uuid.New().String() + "_" + sanitizeName(f.Name) + Limits[kind].Types[mimeType]
	return s.Upload(ctx, bucket, path.Join(sanitizePrefix(prefix), name), f.Data, mimeType)
}

// Upload writes data at bucket/objectPath as is.
func (s *Service) Upload(ctx context.Context, bucket Bucket, objectPath string, data []byte, mimeType string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, &domain.UploadError{Reason: "cannot create upload directory", Err: err}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		_ = os.Remove(abs)
		return nil, &domain.UploadError{Reason: "cannot write file", Err: err}
	}

	obj := &Object{Bucket: bucket, Path: objectPath, MimeType: mimeType, Size: int64(len(data))}
	if bucket.Public() {
		obj.URL = s.PublicURL(bucket, objectPath)
	}
	return obj, nil
}

func (s *Service) PublicURL(bucket Bucket, objectPath string) string {
	return fmt.Sprintf("%s/api/v1/files/%s/%s", s.publicBase, bucket, escapePath(objectPath))
}

// SignedURL grants time-limited read access to a private object.
func (s *Service) SignedURL(bucket Bucket, objectPath string, ttl time.Duration) (string, error) {
	token, _, err := s.signer.SignObject(string(bucket), objectPath, ttl)
	if err != nil {
		return "", err
	}
	return s.PublicURL(bucket, objectPath) + "?token=" + url.QueryEscape(token), nil
}

// Delete is idempotent: a missing object is not an error.
func (s *Service) Delete(_ context.Context, bucket Bucket, objectPath string) error {
	abs, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.UploadError{Reason: "cannot delete file", Err: err}
	}
	return nil
}

// Open returns a reader for a stored object, checking the token for
// private buckets.
func (s *Service) Open(bucket Bucket, objectPath, token string) (*os.File, error) {
	if !bucket.Valid() {
		return nil, fmt.Errorf("bucket %q: %w", bucket, domain.ErrNotFound)
	}
	if !bucket.Public() {
		if token == "" || s.signer.VerifyObject(token, string(bucket), objectPath) != nil {
			return nil, fmt.Errorf("object access: %w", domain.ErrPermission)
		}
	}
	abs, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("object %s: %w", objectPath, domain.ErrNotFound)
	}
	return f, err
}

// resolve maps an object path to disk, refusing anything that escapes the
// bucket directory.
func (s *Service) resolve(bucket Bucket, objectPath string) (string, error) {
	if !bucket.Valid() {
		return "", domain.Invalid("bucket", "unknown bucket")
	}
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", domain.Invalid("path", "invalid object path")
	}
	return filepath.Join(s.baseDir, string(bucket), filepath.FromSlash(clean)), nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func sanitizePrefix(prefix string) string {
	parts := strings.Split(strings.Trim(prefix, "/"), "/")
	for i, p := range parts {
		parts[i] = sanitizeName(p)
	}
	return strings.Join(parts, "/")
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "." {
		return "file"
	}
	return name
}
