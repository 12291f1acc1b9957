package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStorage uploads media to Cloudinary and serves it from the
// returned secure URL. The release reference encodes the resource type
// alongside the public id, since destroy needs both.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage builds a client from a cloudinary:// URL.
func NewCloudinaryStorage(cloudinaryURL, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration: %w", err)
	}
	return &CloudinaryStorage{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStorage) Store(ctx context.Context, content io.Reader) (Stored, error) {
	mtype, kind, replay, err := sniff(content)
	if err != nil {
		return Stored{}, err
	}

	result, err := s.cld.Upload.Upload(ctx, replay, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     uuid.NewString(),
		ResourceType: "auto",
	})
	if err != nil {
		return Stored{}, fmt.Errorf("cloudinary upload: %w", err)
	}

	return Stored{
		Ref:         result.ResourceType + ":" + result.PublicID,
		URL:         result.SecureURL,
		ContentType: mtype.String(),
		Kind:        kind,
	}, nil
}

func (s *CloudinaryStorage) Release(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	resourceType, publicID, ok := strings.Cut(ref, ":")
	if !ok {
		resourceType, publicID = "image", ref
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
