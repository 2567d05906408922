package service

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/storage"
)

const uploadURLExpiry = 15 * time.Minute

var allowedProofTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type proofStorageService struct {
	storage storage.StorageInterface
}

func NewProofStorageService(backend storage.StorageInterface) ProofStorageService {
	return &proofStorageService{storage: backend}
}

func (s *proofStorageService) GetUploadURL(ctx context.Context, userID uuid.UUID, filename, contentType string) (string, string, error) {
	if userID == uuid.Nil {
		return "", "", &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if strings.TrimSpace(filename) == "" {
		return "", "", &domain.ValidationError{Field: "filename", Reason: "is required"}
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if !allowedProofTypes[contentType] {
		return "", "", &domain.ValidationError{Field: "content_type", Reason: "must be a jpeg, png or webp image"}
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), filepath.Ext(filename))
	uploadURL, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		return "", "", domain.WrapDatabase("generate upload url", err)
	}
	return uploadURL, s.storage.PublicURL(key), nil
}
