package http

import (
	"bora-alugar-backend/internal/booking"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/geocoding"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/utils"
)

const dateLayout = utils.DateLayout

func mapUser(u *domain.User) userResponse {
	resp := userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Phone:             u.Phone,
		TaxID:             u.TaxID,
		AvatarURL:         u.AvatarURL,
		City:              u.City,
		Lat:               u.Latitude,
		Lng:               u.Longitude,
		Role:              string(u.Role),
		Plan:              string(u.Plan),
		KYCStatus:         string(u.KYCStatus),
		TrustScore:        u.TrustScore,
		CompletedRentals:  u.CompletedRentals,
		TotalTransactions: u.TotalTransactions,
		CreatedOn:         u.CreatedOn,
	}
	if u.PlanExpiresOn != nil {
		resp.PlanExpiresOn = u.PlanExpiresOn.Format(dateLayout)
	}
	return resp
}

func mapPublicUser(u *domain.User) *publicUserResponse {
	if u == nil {
		return nil
	}
	return &publicUserResponse{
		ID:               u.ID,
		Name:             u.Name,
		AvatarURL:        u.AvatarURL,
		City:             u.City,
		KYCStatus:        string(u.KYCStatus),
		TrustScore:       u.TrustScore,
		CompletedRentals: u.CompletedRentals,
	}
}

func mapTokens(t *service.Tokens) tokensResponse {
	return tokensResponse{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

func mapItem(it *domain.Item) itemResponse {
	images := it.Images
	if images == nil {
		images = []string{}
	}
	return itemResponse{
		ID:                 it.ID,
		OwnerID:            it.OwnerID,
		Owner:              mapPublicUser(it.Owner),
		Title:              it.Title,
		Description:        it.Description,
		Category:           it.Category,
		Images:             images,
		VideoURL:           it.VideoURL,
		PricePerDayCents:   it.PricePerDayCents,
		PricePerWeekCents:  it.PricePerWeekCents,
		PricePerMonthCents: it.PricePerMonthCents,
		Delivery: deliveryDTO{
			Enabled:     it.Delivery.Enabled,
			FeeCents:    it.Delivery.FeeCents,
			MaxRadiusKm: it.Delivery.MaxRadiusKm,
		},
		Available:   it.Available,
		Status:      string(it.Status),
		Lat:         it.Latitude,
		Lng:         it.Longitude,
		City:        it.City,
		Rating:      it.Rating,
		ReviewCount: it.ReviewCount,
		CreatedOn:   it.CreatedOn,
		UpdatedOn:   it.UpdatedOn,
	}
}

func mapItemWithDistance(it *domain.ItemWithDistance) itemResponse {
	resp := mapItem(&it.Item)
	resp.DistanceKm = it.DistanceKm
	return resp
}

func mapItems(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, mapItem(&items[i]))
	}
	return out
}

// toItemInput fills in defaults: a new listing is available unless told otherwise
func toItemInput(req itemRequest) service.ItemInput {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return service.ItemInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		VideoURL:           req.VideoURL,
		PricePerDayCents:   req.PricePerDayCents,
		PricePerWeekCents:  req.PricePerWeekCents,
		PricePerMonthCents: req.PricePerMonthCents,
		Delivery: domain.Delivery{
			Enabled:     req.Delivery.Enabled,
			FeeCents:    req.Delivery.FeeCents,
			MaxRadiusKm: req.Delivery.MaxRadiusKm,
		},
		Available: available,
		Status:    domain.ItemStatus(req.Status),
		Location:  domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng},
		City:      req.City,
	}
}

func mapImage(img *domain.ItemImage, t *service.UploadTicket) imageResponse {
	return imageResponse{
		Image: imageInfo{
			ID:       img.ID,
			ItemID:   img.ItemID,
			FileName: img.FileName,
			Key:      img.FilePath,
			MimeType: img.MimeType,
			Status:   img.Status,
		},
		UploadURL: t.UploadURL,
		ExpiresAt: t.ExpiresAt,
	}
}

func mapAvailability(a *service.Availability) availabilityResponse {
	return availabilityResponse{Available: a.Available, Blocked: mapRanges(a.Blocked)}
}

func mapRanges(ranges []booking.DateRange) []rangeResponse {
	out := make([]rangeResponse, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, rangeResponse{Start: r.Start.Format(dateLayout), End: r.End.Format(dateLayout)})
	}
	return out
}

func mapRental(r *domain.Rental) rentalResponse {
	return rentalResponse{
		ID:               r.ID,
		ItemID:           r.ItemID,
		RenterID:         r.RenterID,
		OwnerID:          r.OwnerID,
		StartDate:        r.StartDate.Format(dateLayout),
		EndDate:          r.EndDate.Format(dateLayout),
		TotalPriceCents:  r.TotalPriceCents,
		DeliveryMethod:   string(r.DeliveryMethod),
		DeliveryFeeCents: r.DeliveryFeeCents,
		DeliveryAddress:  r.DeliveryAddress,
		ContractAccepted: r.ContractAccepted,
		Status:           string(r.Status),
		CancelReason:     r.CancelReason,
		CancelledBy:      r.CancelledBy,
		CreatedOn:        r.CreatedOn,
		UpdatedOn:        r.UpdatedOn,
	}
}

func mapRentals(rentals []domain.Rental) []rentalResponse {
	out := make([]rentalResponse, 0, len(rentals))
	for i := range rentals {
		out = append(out, mapRental(&rentals[i]))
	}
	return out
}

func mapReview(r *domain.Review) reviewResponse {
	return reviewResponse{
		ID:           r.ID,
		RentalID:     r.RentalID,
		ItemID:       r.ItemID,
		ReviewerID:   r.ReviewerID,
		ReviewedID:   r.ReviewedID,
		ReviewerRole: string(r.ReviewerRole),
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedOn:    r.CreatedOn,
	}
}

func mapReviews(reviews []domain.Review) []reviewResponse {
	out := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, mapReview(&reviews[i]))
	}
	return out
}

func mapMessage(m *domain.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		ItemID:     m.ItemID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedOn:  m.CreatedOn,
	}
}

func mapMessages(msgs []domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, mapMessage(&msgs[i]))
	}
	return out
}

func mapConversations(convs []domain.Conversation) []conversationResponse {
	out := make([]conversationResponse, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		out = append(out, conversationResponse{
			OtherUserID: c.OtherUserID,
			OtherName:   c.OtherName,
			LastMessage: mapMessage(&c.LastMessage),
			UnreadCount: c.UnreadCount,
		})
	}
	return out
}

func mapNotifications(notes []domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, notificationResponse{
			ID:         n.ID,
			Type:       string(n.Type),
			Title:      n.Title,
			Message:    n.Message,
			IsRead:     n.IsRead,
			Attributes: n.Attributes,
			CreatedOn:  n.CreatedOn,
		})
	}
	return out
}

// mapPlans reports an unlimited tier as a null listingLimit
func mapPlans(tiers []plan.Tier) []planResponse {
	out := make([]planResponse, 0, len(tiers))
	for _, t := range tiers {
		resp := planResponse{Plan: string(t.Plan), PriceCents: t.PriceCents}
		if t.ListingLimit != plan.Unlimited {
			limit := t.ListingLimit
			resp.ListingLimit = &limit
		}
		out = append(out, resp)
	}
	return out
}

func mapKYC(k *domain.KYCRequest) kycResponse {
	return kycResponse{
		ID:              k.ID,
		UserID:          k.UserID,
		DocumentKey:     k.DocumentKey,
		SelfieKey:       k.SelfieKey,
		Status:          string(k.Status),
		ReviewerID:      k.ReviewerID,
		RejectionReason: k.RejectionReason,
		CreatedOn:       k.CreatedOn,
		ReviewedOn:      k.ReviewedOn,
	}
}

func mapKYCs(reqs []domain.KYCRequest) []kycResponse {
	out := make([]kycResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, mapKYC(&reqs[i]))
	}
	return out
}

func mapUsers(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, mapUser(&users[i]))
	}
	return out
}

func mapPlace(p geocoding.Place) placeResponse {
	return placeResponse{City: p.City, State: p.State, Country: p.Country}
}
