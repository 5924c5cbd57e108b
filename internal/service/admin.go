package service

import (
	"context"
	"strings"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
)

type adminService struct {
	kycRepo  repository.KYCRepository
	userRepo repository.UserRepository
	items    ItemService
	reviews  ReviewService
	notifier *Notifier
	events   Publisher
}

func NewAdminService(
	kycRepo repository.KYCRepository,
	userRepo repository.UserRepository,
	items ItemService,
	reviews ReviewService,
	notifier *Notifier,
	events Publisher,
) AdminService {
	return &adminService{
		kycRepo:  kycRepo,
		userRepo: userRepo,
		items:    items,
		reviews:  reviews,
		notifier: notifier,
		events:   events,
	}
}

func (s *adminService) ListKYCRequests(ctx context.Context, status domain.KYCStatus) ([]domain.KYCRequest, error) {
	if status == "" {
		status = domain.KYCStatusPending
	}
	return s.kycRepo.ListByStatus(ctx, status)
}

func (s *adminService) ApproveKYC(ctx context.Context, adminID, requestID int32) (*domain.KYCRequest, error) {
	return s.review(ctx, adminID, requestID, domain.KYCStatusApproved, "")
}

func (s *adminService) RejectKYC(ctx context.Context, adminID, requestID int32, reason string) (*domain.KYCRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "is required when rejecting")
	}
	return s.review(ctx, adminID, requestID, domain.KYCStatusRejected, reason)
}

func (s *adminService) review(ctx context.Context, adminID, requestID int32, status domain.KYCStatus, reason string) (*domain.KYCRequest, error) {
	logger.EnterMethod("adminService.review", "adminID", adminID, "kycID", requestID, "status", status)

	req, err := s.kycRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	req.Status = status
	req.ReviewerID = &adminID
	req.RejectionReason = reason
	if err := s.kycRepo.Review(ctx, req); err != nil {
		logger.ExitMethodWithError("adminService.review", err)
		return nil, err
	}

	// Verification feeds the trust score
	if _, err := s.reviews.RecomputeTrustScore(ctx, req.UserID); err != nil {
		logger.Error("Failed to update trust score after KYC review", "userID", req.UserID, "error", err)
	}

	note := Note{
		UserID:     req.UserID,
		Type:       domain.NotificationKYC,
		Title:      "Verificação de identidade aprovada",
		Message:    "Seus documentos foram aprovados. Você já pode anunciar itens de maior valor.",
		Attributes: map[string]string{"kyc_id": itoa(req.ID), "status": string(status)},
		Email:      true,
	}
	if status == domain.KYCStatusRejected {
		note.Title = "Verificação de identidade recusada"
		note.Message = "Seus documentos foram recusados: " + reason
	}
	s.notifier.Notify(ctx, note)
	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionProfiles, Op: domain.ChangeUpdate, ID: req.UserID, Audience: []int32{req.UserID}})

	logger.ExitMethod("adminService.review", "kycID", req.ID)
	return req, nil
}

func (s *adminService) ListUsers(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.userRepo.List(ctx, strings.TrimSpace(query), page, pageSize)
}

// SetUserPlan overrides a user's plan, e.g. after an offline payment
func (s *adminService) SetUserPlan(ctx context.Context, adminID, userID int32, p domain.Plan, expiresOn *time.Time) (*domain.User, error) {
	if !p.Valid() {
		return nil, invalid("plan", "must be FREE, BASIC or PREMIUM")
	}
	if p == domain.PlanFree {
		expiresOn = nil
	}
	if err := s.userRepo.UpdatePlan(ctx, userID, p, expiresOn); err != nil {
		return nil, err
	}
	logger.Info("Plan set by admin", "adminID", adminID, "userID", userID, "plan", p)

	s.notifier.Notify(ctx, Note{
		UserID:     userID,
		Type:       domain.NotificationPlan,
		Title:      "Plano atualizado",
		Message:    "Seu plano agora é " + string(p),
		Attributes: map[string]string{"plan": string(p)},
	})
	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionProfiles, Op: domain.ChangeUpdate, ID: userID, Audience: []int32{userID}})
	return s.userRepo.GetByID(ctx, userID)
}

func (s *adminService) DeleteItem(ctx context.Context, adminID, itemID int32) error {
	return s.items.DeleteItem(ctx, adminID, true, itemID)
}
