package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
)

// FileStore keeps blobs under a root directory. A ".meta" sidecar next to
// each file holds its content type and checksum.
type FileStore struct {
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at root, creating it if needed
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("blob path required for file driver")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{root: root}, nil
}

type fileMeta struct {
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *FileStore) paths(key string) (string, string, error) {
	if strings.TrimSpace(key) == "" {
		return "", "", errors.New("empty blob key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", "", fmt.Errorf("invalid blob key %q", key)
	}
	data := filepath.Join(s.root, filepath.FromSlash(filepath.Clean(key)))
	return data, data + ".meta", nil
}

func (s *FileStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, ErrExists
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Info{}, err
	}

	meta := fileMeta{
		ContentType: contentType,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		return Info{}, err
	}
	metrics.RecordBlobBytes("in", size)
	return meta.info(key), nil
}

func (s *FileStore) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return Info{}, nil, err
	}
	meta, err := readFileMeta(metaPath)
	if err != nil {
		return Info{}, nil, err
	}
	f, err := os.Open(dataPath)
	if err != nil {
		return Info{}, nil, notFound(err)
	}
	metrics.RecordBlobBytes("out", meta.Size)
	return meta.info(key), f, nil
}

func (s *FileStore) Head(ctx context.Context, key string) (Info, error) {
	_, metaPath, err := s.paths(key)
	if err != nil {
		return Info{}, err
	}
	meta, err := readFileMeta(metaPath)
	if err != nil {
		return Info{}, err
	}
	return meta.info(key), nil
}

// Delete removes the blob. Deleting a missing key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dataPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Remove(metaPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// PresignURL is unsupported; file blobs are streamed by the server
func (s *FileStore) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", ErrUnsupported
}

func readFileMeta(path string) (fileMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fileMeta{}, notFound(err)
	}
	var meta fileMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return fileMeta{}, fmt.Errorf("reading blob metadata: %w", err)
	}
	return meta, nil
}

func (m fileMeta) info(key string) Info {
	return Info{Key: key, Size: m.Size, ContentType: m.ContentType, ETag: m.ETag, LastModified: m.CreatedAt}
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
