package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage writes uploads into a directory on disk. Files are served
// by the router under /uploads.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the uploads directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the backing directory, for static file serving.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Store(ctx context.Context, content io.Reader) (Stored, error) {
	mtype, kind, replay, err := sniff(content)
	if err != nil {
		return Stored{}, err
	}

	name := uuid.NewString() + mtype.Extension()
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return Stored{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, replay); err != nil {
		f.Close()
		os.Remove(f.Name())
		return Stored{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return Stored{}, fmt.Errorf("write upload file: %w", err)
	}

	return Stored{
		Ref:         name,
		URL:         "/uploads/" + name,
		ContentType: mtype.String(),
		Kind:        kind,
	}, nil
}

func (s *LocalStorage) Release(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
