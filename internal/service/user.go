package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/geocoding"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/storage"
	"bora-alugar-backend/internal/utils"
)

type userService struct {
	userRepo repository.UserRepository
	kycRepo  repository.KYCRepository
	geocoder geocoding.Geocoder
	store    storage.ObjectStore
	events   Publisher
}

func NewUserService(userRepo repository.UserRepository, kycRepo repository.KYCRepository, geocoder geocoding.Geocoder, store storage.ObjectStore, events Publisher) UserService {
	return &userService{
		userRepo: userRepo,
		kycRepo:  kycRepo,
		geocoder: geocoder,
		store:    store,
		events:   events,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID int32, in ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := validation{}
	v.check(strings.TrimSpace(in.Name) != "", "name", "is required")
	v.check(in.TaxID == "" || utils.ValidCPF(in.TaxID), "taxId", "must be a valid CPF")
	if err := v.err(); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Phone = in.Phone
	user.TaxID = utils.NormalizeTaxID(in.TaxID)
	user.AvatarURL = in.AvatarURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, userID)
	return user, nil
}

// UpdateLocation saves the coordinates and the city they resolve to. A failed
// lookup stores no city rather than blocking the update.
func (s *userService) UpdateLocation(ctx context.Context, userID int32, point domain.GeoPoint) (*domain.User, error) {
	if !point.Valid() {
		return nil, invalid("location", "latitude must be within ±90 and longitude within ±180")
	}

	place := s.geocoder.Reverse(ctx, point)
	city := place.City
	if city == geocoding.UnknownLocation {
		city = ""
	}

	if err := s.userRepo.UpdateLocation(ctx, userID, point, city); err != nil {
		return nil, err
	}
	s.publish(ctx, userID)
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) UpdatePushToken(ctx context.Context, userID int32, token string) error {
	return s.userRepo.UpdatePushToken(ctx, userID, strings.TrimSpace(token))
}

func (s *userService) ReverseGeocode(ctx context.Context, point domain.GeoPoint) (geocoding.Place, error) {
	if !point.Valid() {
		return geocoding.Place{}, invalid("location", "latitude must be within ±90 and longitude within ±180")
	}
	return s.geocoder.Reverse(ctx, point), nil
}

// SubmitKYC files a verification request for documents the user already uploaded
func (s *userService) SubmitKYC(ctx context.Context, userID int32, documentKey, selfieKey string) (*domain.KYCRequest, error) {
	logger.EnterMethod("userService.SubmitKYC", "userID", userID)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.KYCStatus == domain.KYCStatusPending || user.KYCStatus == domain.KYCStatusApproved {
		return nil, ErrKYCAlreadyFiled
	}

	prefix := fmt.Sprintf("%s/%d/", uploadPrefixKYC, userID)
	v := validation{}
	v.check(strings.HasPrefix(documentKey, prefix), "documentKey", "must be a key issued for your KYC upload")
	v.check(strings.HasPrefix(selfieKey, prefix), "selfieKey", "must be a key issued for your KYC upload")
	v.check(documentKey != selfieKey, "selfieKey", "must differ from the document")
	if err := v.err(); err != nil {
		return nil, err
	}

	for field, key := range map[string]string{"documentKey": documentKey, "selfieKey": selfieKey} {
		ok, _, err := s.store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check uploaded %s: %w", field, err)
		}
		if !ok {
			return nil, invalid(field, "file was not uploaded")
		}
	}

	req := &domain.KYCRequest{UserID: userID, DocumentKey: documentKey, SelfieKey: selfieKey}
	if err := s.kycRepo.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrKYCAlreadyFiled
		}
		logger.ExitMethodWithError("userService.SubmitKYC", err)
		return nil, err
	}

	s.publish(ctx, userID)
	logger.ExitMethod("userService.SubmitKYC", "requestID", req.ID)
	return req, nil
}

func (s *userService) publish(ctx context.Context, userID int32) {
	s.events.Publish(ctx, domain.ChangeEvent{
		Collection: domain.CollectionProfiles,
		Op:         domain.ChangeUpdate,
		ID:         userID,
		Audience:   []int32{userID},
	})
}
