package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/storage"
)

const (
	uploadPrefixKYC    = "kyc"
	uploadPrefixAvatar = "avatars"
	uploadPrefixItems  = "items"
	maxImagesPerItem   = 10
)

type uploadService struct {
	itemRepo     repository.ItemRepository
	store        storage.ObjectStore
	cache        cache.ItemCache
	events       Publisher
	allowedTypes []string
	maxSize      int64
	expiry       time.Duration
	now          func() time.Time
}

func NewUploadService(itemRepo repository.ItemRepository, store storage.ObjectStore, itemCache cache.ItemCache, events Publisher, cfg config.StorageConfig) UploadService {
	return &uploadService{
		itemRepo:     itemRepo,
		store:        store,
		cache:        itemCache,
		events:       events,
		allowedTypes: cfg.AllowedTypes,
		maxSize:      cfg.MaxFileSize * 1024 * 1024,
		expiry:       time.Duration(cfg.URLExpiry) * time.Minute,
		now:          time.Now,
	}
}

func (s *uploadService) ticket(ctx context.Context, prefix string, userID int32, contentType string) (*UploadTicket, error) {
	if !storage.Allowed(s.allowedTypes, contentType) {
		return nil, invalid("contentType", fmt.Sprintf("must be one of %s", strings.Join(s.allowedTypes, ", ")))
	}
	key, err := storage.NewKey(prefix, userID, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, invalid("contentType", err.Error())
		}
		return nil, err
	}
	url, err := s.store.PresignUpload(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	return &UploadTicket{Key: key, UploadURL: url, ExpiresAt: s.now().Add(s.expiry)}, nil
}

func (s *uploadService) RequestUpload(ctx context.Context, userID int32, purpose, contentType string) (*UploadTicket, error) {
	var prefix string
	switch purpose {
	case "kyc":
		prefix = uploadPrefixKYC
	case "avatar":
		prefix = uploadPrefixAvatar
	default:
		return nil, invalid("purpose", "must be kyc or avatar")
	}
	return s.ticket(ctx, prefix, userID, contentType)
}

// RequestItemImage registers a pending image for the item and returns where to
// upload it. The image joins the gallery once confirmed.
func (s *uploadService) RequestItemImage(ctx context.Context, userID, itemID int32, fileName, contentType string) (*domain.ItemImage, *UploadTicket, error) {
	logger.EnterMethod("uploadService.RequestItemImage", "userID", userID, "itemID", itemID)

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item.DeletedOn != nil {
		return nil, nil, repository.ErrNotFound
	}
	if item.OwnerID != userID {
		return nil, nil, ErrForbidden
	}
	if len(item.Images) >= maxImagesPerItem {
		return nil, nil, invalid("images", fmt.Sprintf("an item can have at most %d images", maxImagesPerItem))
	}

	t, err := s.ticket(ctx, uploadPrefixItems, userID, contentType)
	if err != nil {
		return nil, nil, err
	}

	expires := t.ExpiresAt
	img := &domain.ItemImage{
		ItemID:    itemID,
		UserID:    userID,
		FileName:  path.Base(fileName),
		FilePath:  t.Key,
		MimeType:  contentType,
		Status:    domain.ImageStatusPending,
		ExpiresAt: &expires,
	}
	if err := s.itemRepo.CreateImage(ctx, img); err != nil {
		logger.ExitMethodWithError("uploadService.RequestItemImage", err)
		return nil, nil, err
	}

	logger.ExitMethod("uploadService.RequestItemImage", "imageID", img.ID, "key", t.Key)
	return img, t, nil
}

func (s *uploadService) ConfirmItemImage(ctx context.Context, userID, itemID, imageID int32) (*domain.Item, error) {
	img, err := s.itemRepo.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.UserID != userID || (img.ItemID != 0 && img.ItemID != itemID) {
		return nil, ErrForbidden
	}
	if img.Status != domain.ImageStatusPending {
		return nil, fmt.Errorf("%w: image %d is %s", repository.ErrConflict, imageID, img.Status)
	}

	ok, size, err := s.store.Exists(ctx, img.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check upload: %w", err)
	}
	if !ok {
		return nil, invalid("image", "file was not uploaded")
	}
	if s.maxSize > 0 && size > s.maxSize {
		if err := s.store.Delete(ctx, img.FilePath); err != nil {
			logger.Warn("Failed to delete oversized upload", "key", img.FilePath, "error", err)
		}
		return nil, invalid("image", fmt.Sprintf("file exceeds %d MB", s.maxSize/1024/1024))
	}

	if err := s.itemRepo.ConfirmImage(ctx, imageID, itemID); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, itemID); err != nil {
		logger.Warn("Item cache invalidation failed", "itemID", itemID, "error", err)
	}
	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionItems, Op: domain.ChangeUpdate, ID: itemID})
	return s.itemRepo.GetByID(ctx, itemID)
}

func (s *uploadService) DownloadURL(ctx context.Context, userID int32, isAdmin bool, key string) (string, error) {
	if key == "" {
		return "", invalid("key", "is required")
	}
	if strings.HasPrefix(key, uploadPrefixKYC+"/") && !isAdmin && !strings.HasPrefix(key, fmt.Sprintf("%s/%d/", uploadPrefixKYC, userID)) {
		return "", ErrForbidden
	}
	return s.store.PresignDownload(ctx, key, s.expiry)
}

// CleanupExpired drops pending uploads that were never confirmed, with their stored files
func (s *uploadService) CleanupExpired(ctx context.Context) (int, error) {
	images, err := s.itemRepo.DeleteExpiredPendingImages(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for _, img := range images {
		if err := s.store.Delete(ctx, img.FilePath); err != nil {
			logger.Warn("Failed to delete expired upload", "key", img.FilePath, "error", err)
		}
	}
	return len(images), nil
}
