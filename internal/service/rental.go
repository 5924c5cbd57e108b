package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bora-alugar-backend/internal/booking"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/metrics"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/utils"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	userRepo   repository.UserRepository
	notifier   *Notifier
	events     Publisher
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier *Notifier,
	events Publisher,
) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		events:     events,
	}
}

// RequestRental checks every booking rule before writing. The repository
// re-checks the overlap under a row lock, so a concurrent request for the same
// dates still ends in ErrUnavailable.
func (s *rentalService) RequestRental(ctx context.Context, renterID int32, req RentalRequest) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.RequestRental", "renterID", renterID, "itemID", req.ItemID)

	rental, item, err := s.prepare(ctx, renterID, req)
	if err != nil {
		logger.ExitMethodWithError("rentalService.RequestRental", err, "itemID", req.ItemID)
		return nil, err
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			metrics.RecordRejection("overlap")
			err = ErrUnavailable
		}
		logger.ExitMethodWithError("rentalService.RequestRental", err, "itemID", req.ItemID)
		return nil, err
	}

	renterName := "Someone"
	if renter, err := s.userRepo.GetByID(ctx, renterID); err == nil {
		renterName = renter.Name
	}
	s.notifier.Notify(ctx, Note{
		UserID:  rental.OwnerID,
		Type:    domain.NotificationRentalRequest,
		Title:   "Novo pedido de aluguel",
		Message: fmt.Sprintf("%s quer alugar %s de %s a %s", renterName, item.Title, fmtDate(rental.StartDate), fmtDate(rental.EndDate)),
		Attributes: map[string]string{
			"rental_id": fmt.Sprintf("%d", rental.ID),
			"item_id":   fmt.Sprintf("%d", item.ID),
		},
		Email: true,
	})
	s.publish(ctx, rental, domain.ChangeInsert)

	metrics.RecordTransition("NEW", string(domain.RentalStatusPending))
	logger.ExitMethod("rentalService.RequestRental", "rentalID", rental.ID)
	return rental, nil
}

func (s *rentalService) prepare(ctx context.Context, renterID int32, req RentalRequest) (*domain.Rental, *domain.Item, error) {
	dates := booking.NewDateRange(req.StartDate, req.EndDate)
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, nil, invalid("dates", "start and end dates are required")
	}
	if !dates.Valid() {
		return nil, nil, invalid("endDate", "must not be before startDate")
	}
	if !req.ContractAccepted {
		metrics.RecordRejection("contract")
		return nil, nil, ErrContractRequired
	}

	item, err := s.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if item.DeletedOn != nil {
		return nil, nil, repository.ErrNotFound
	}
	if !item.Rentable() {
		metrics.RecordRejection("not_rentable")
		return nil, nil, ErrItemNotRentable
	}
	if item.OwnerID == renterID {
		metrics.RecordRejection("self_rental")
		return nil, nil, ErrSelfRental
	}

	method := req.DeliveryMethod
	if method == "" {
		method = domain.DeliveryMethodPickup
	}
	var deliveryFee int32
	switch method {
	case domain.DeliveryMethodPickup:
	case domain.DeliveryMethodDelivery:
		if !item.Delivery.Enabled {
			metrics.RecordRejection("delivery")
			return nil, nil, ErrDeliveryUnavailable
		}
		if strings.TrimSpace(req.DeliveryAddress) == "" {
			return nil, nil, invalid("deliveryAddress", "is required for delivery")
		}
		deliveryFee = item.Delivery.FeeCents
	default:
		return nil, nil, invalid("deliveryMethod", "must be PICKUP or DELIVERY")
	}

	// Fast path; the authoritative check runs inside the insert transaction
	existing, err := s.rentalRepo.ListByItem(ctx, item.ID, dates.Start, dates.End)
	if err != nil {
		return nil, nil, err
	}
	if !booking.IsAvailable(existing, item.ID, dates) {
		metrics.RecordRejection("overlap")
		return nil, nil, ErrUnavailable
	}

	cost, err := utils.CalculateRentalCost(dates.Start, dates.End, item)
	if err != nil {
		return nil, nil, invalid("dates", err.Error())
	}

	rental := &domain.Rental{
		ItemID:           item.ID,
		RenterID:         renterID,
		OwnerID:          item.OwnerID,
		StartDate:        dates.Start,
		EndDate:          dates.End,
		TotalPriceCents:  cost.TotalCost + deliveryFee,
		DeliveryMethod:   method,
		DeliveryFeeCents: deliveryFee,
		DeliveryAddress:  strings.TrimSpace(req.DeliveryAddress),
		ContractAccepted: true,
		Status:           domain.RentalStatusPending,
	}
	return rental, item, nil
}

func (s *rentalService) GetRental(ctx context.Context, userID int32, isAdmin bool, rentalID int32) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.IsParty(userID) && !isAdmin {
		return nil, ErrForbidden
	}
	return rental, nil
}

func (s *rentalService) ListRentals(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.rentalRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *rentalService) ListLendings(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.rentalRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}

func (s *rentalService) Transition(ctx context.Context, userID int32, isAdmin bool, rentalID int32, to domain.RentalStatus, reason string) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.Transition", "rentalID", rentalID, "userID", userID, "to", to)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Transition", err)
		return nil, err
	}

	actor := booking.ActorFor(rental, userID, isAdmin)
	if actor == "" {
		logger.ExitMethodWithError("rentalService.Transition", ErrForbidden)
		return nil, ErrForbidden
	}

	from, err := booking.Transition(rental, to, actor)
	if err != nil {
		if errors.Is(err, booking.ErrNotAllowed) {
			err = fmt.Errorf("%w: %v", ErrForbidden, err)
		}
		metrics.RecordRejection("transition")
		logger.ExitMethodWithError("rentalService.Transition", err)
		return nil, err
	}

	if to == domain.RentalStatusCancelled {
		rental.CancelReason = strings.TrimSpace(reason)
		rental.CancelledBy = &userID
	}

	if err := s.rentalRepo.UpdateStatus(ctx, rental, from); err != nil {
		logger.ExitMethodWithError("rentalService.Transition", err)
		return nil, err
	}
	metrics.RecordTransition(string(from), string(to))

	if to == domain.RentalStatusCompleted {
		if err := s.userRepo.IncrementTransactions(ctx, rental.RenterID, rental.OwnerID); err != nil {
			logger.Error("Failed to count completed rental", "rentalID", rental.ID, "error", err)
		}
	}

	s.notifyParties(ctx, rental, userID)
	s.publish(ctx, rental, domain.ChangeUpdate)
	if to == domain.RentalStatusCancelled {
		// Cancelled dates become bookable again
		s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionItems, Op: domain.ChangeUpdate, ID: rental.ItemID})
	}

	logger.ExitMethod("rentalService.Transition", "rentalID", rental.ID, "from", from, "to", to)
	return rental, nil
}

var statusLabels = map[domain.RentalStatus]string{
	domain.RentalStatusConfirmed: "confirmado",
	domain.RentalStatusShipped:   "enviado",
	domain.RentalStatusDelivered: "entregue",
	domain.RentalStatusActive:    "em andamento",
	domain.RentalStatusCompleted: "concluído",
	domain.RentalStatusCancelled: "cancelado",
}

// notifyParties tells the other side(s) of the rental about the change
func (s *rentalService) notifyParties(ctx context.Context, rental *domain.Rental, actorID int32) {
	title := "Aluguel atualizado"
	itemTitle := fmt.Sprintf("#%d", rental.ItemID)
	if item, err := s.itemRepo.GetByID(ctx, rental.ItemID); err == nil {
		itemTitle = item.Title
	}
	msg := fmt.Sprintf("O aluguel de %s foi %s", itemTitle, statusLabels[rental.Status])
	if rental.Status == domain.RentalStatusCancelled && rental.CancelReason != "" {
		msg += ": " + rental.CancelReason
	}

	for _, id := range []int32{rental.RenterID, rental.OwnerID} {
		if id == actorID {
			continue
		}
		s.notifier.Notify(ctx, Note{
			UserID:  id,
			Type:    domain.NotificationRentalStatus,
			Title:   title,
			Message: msg,
			Attributes: map[string]string{
				"rental_id": fmt.Sprintf("%d", rental.ID),
				"status":    string(rental.Status),
			},
			Email: rental.Status == domain.RentalStatusConfirmed || rental.Status == domain.RentalStatusCancelled,
		})
	}
}

func (s *rentalService) publish(ctx context.Context, rental *domain.Rental, op domain.ChangeOp) {
	s.events.Publish(ctx, domain.ChangeEvent{
		Collection: domain.CollectionRentals,
		Op:         op,
		ID:         rental.ID,
		Audience:   []int32{rental.RenterID, rental.OwnerID},
	})
}

func fmtDate(t time.Time) string {
	return t.Format("02/01/2006")
}
