package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/types"
)

// PresignExpiry is how long an upload URL stays valid
const PresignExpiry = 15 * time.Minute

// Upload kinds
const (
	UploadAvatar = "avatar"
	UploadRecipe = "recipe"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Presigner is implemented by config.S3Config
type Presigner interface {
	PresignPut(ctx context.Context, objectKey, contentType string, expiration time.Duration) (string, error)
	PublicURL(objectKey string) string
}

type UploadService struct {
	store Presigner
}

func NewUploadService(store Presigner) *UploadService {
	return &UploadService{store: store}
}

// Presign returns a short-lived PUT URL for an image owned by userID
func (s *UploadService) Presign(ctx context.Context, userID uuid.UUID, kind, contentType string) (*types.PresignResponse, error) {
	if kind != UploadAvatar && kind != UploadRecipe {
		return nil, apperr.E(apperr.ErrValidation, "Kind must be %q or %q", UploadAvatar, UploadRecipe)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperr.E(apperr.ErrValidation, "Unsupported content type %q", contentType)
	}

	key := fmt.Sprintf("%ss/%s/%s%s", kind, userID, uuid.New(), ext)
	url, err := s.store.PresignPut(ctx, key, contentType, PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &types.PresignResponse{
		Key:       key,
		URL:       url,
		PublicURL: s.store.PublicURL(key),
	}, nil
}
