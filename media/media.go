// Package media stores uploaded binary content and hands back an opaque
// reference plus a URL clients can load. Backends: local uploads directory
// or Cloudinary.
package media

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"laughschool/models"
)

// ErrUnsupportedMedia is returned for files outside the image/video allow-list.
var ErrUnsupportedMedia = errors.New("only images and videos are allowed")

// ErrTooLarge is returned when an upload exceeds the configured size cap.
var ErrTooLarge = errors.New("file exceeds the upload size limit")

// Stored describes successfully stored content.
type Stored struct {
	Ref         string // opaque reference, passed back to Release on delete
	URL         string
	ContentType string
	Kind        models.ItemType // TypeImage or TypeVideo
}

// Storage is the media collaborator: store bytes, resolve them to a URL,
// release them when the owning item is deleted.
type Storage interface {
	Store(ctx context.Context, content io.Reader) (Stored, error)
	Release(ctx context.Context, ref string) error
}

// allowed maps accepted MIME types to the item variant they produce.
var allowed = map[string]models.ItemType{
	"image/jpeg":      models.TypeImage,
	"image/png":       models.TypeImage,
	"image/gif":       models.TypeImage,
	"video/mp4":       models.TypeVideo,
	"video/webm":      models.TypeVideo,
	"video/quicktime": models.TypeVideo,
}

// sniff detects the content type from the first bytes of content and checks
// it against the allow-list. It returns a reader that replays the consumed
// header followed by the rest of content.
func sniff(content io.Reader) (*mimetype.MIME, models.ItemType, io.Reader, error) {
	header := make([]byte, 3072)
	n, err := io.ReadFull(content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", nil, err
	}
	mtype := mimetype.Detect(header[:n])
	kind, ok := allowed[mtype.String()]
	if !ok {
		return nil, "", nil, ErrUnsupportedMedia
	}
	return mtype, kind, io.MultiReader(bytes.NewReader(header[:n]), content), nil
}
