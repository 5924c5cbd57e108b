package http

import "time"

// Request bodies. Coordinates are pointers so a zero latitude is not mistaken
// for a missing one.

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	TaxID    string `json:"taxId" validate:"omitempty,max=18"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	TaxID     string `json:"taxId" validate:"omitempty,max=18"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

type locationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

type pushTokenRequest struct {
	Token string `json:"token" validate:"max=4096"`
}

type deliveryDTO struct {
	Enabled     bool  `json:"enabled"`
	FeeCents    int32 `json:"feeCents" validate:"gte=0"`
	MaxRadiusKm int32 `json:"maxRadiusKm" validate:"gte=0"`
}

type itemRequest struct {
	Title              string      `json:"title" validate:"required,max=120"`
	Description        string      `json:"description" validate:"max=5000"`
	Category           string      `json:"category" validate:"required,max=60"`
	VideoURL           string      `json:"videoUrl" validate:"omitempty,url"`
	PricePerDayCents   int32       `json:"pricePerDayCents" validate:"gt=0"`
	PricePerWeekCents  int32       `json:"pricePerWeekCents" validate:"gte=0"`
	PricePerMonthCents int32       `json:"pricePerMonthCents" validate:"gte=0"`
	Delivery           deliveryDTO `json:"delivery"`
	Available          *bool       `json:"available"`
	Status             string      `json:"status" validate:"omitempty,oneof=AVAILABLE RENTED MAINTENANCE"`
	Lat                *float64    `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng                *float64    `json:"lng" validate:"required,gte=-180,lte=180"`
	City               string      `json:"city" validate:"max=120"`
}

type imageRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
}

type uploadRequest struct {
	Purpose     string `json:"purpose" validate:"required,oneof=kyc avatar"`
	ContentType string `json:"contentType" validate:"required"`
}

type rentalRequest struct {
	ItemID           int32  `json:"itemId" validate:"required,gt=0"`
	StartDate        string `json:"startDate" validate:"required"`
	EndDate          string `json:"endDate" validate:"required"`
	DeliveryMethod   string `json:"deliveryMethod" validate:"omitempty,oneof=PICKUP DELIVERY"`
	DeliveryAddress  string `json:"deliveryAddress" validate:"max=500"`
	ContractAccepted bool   `json:"contractAccepted"`
}

type transitionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type reviewRequest struct {
	Rating  int32  `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type messageRequest struct {
	ReceiverID int32  `json:"receiverId" validate:"required,gt=0"`
	ItemID     *int32 `json:"itemId" validate:"omitempty,gt=0"`
	Content    string `json:"content" validate:"required"`
}

type planRequest struct {
	Plan string `json:"plan" validate:"required,oneof=FREE BASIC PREMIUM"`
}

type adminPlanRequest struct {
	Plan      string `json:"plan" validate:"required,oneof=FREE BASIC PREMIUM"`
	ExpiresOn string `json:"expiresOn"`
}

type kycRequest struct {
	DocumentKey string `json:"documentKey" validate:"required"`
	SelfieKey   string `json:"selfieKey" validate:"required"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Responses

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   userResponse   `json:"user"`
	Tokens tokensResponse `json:"tokens"`
}

type userResponse struct {
	ID                int32     `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	TaxID             string    `json:"taxId,omitempty"`
	AvatarURL         string    `json:"avatarUrl,omitempty"`
	City              string    `json:"city,omitempty"`
	Lat               *float64  `json:"lat,omitempty"`
	Lng               *float64  `json:"lng,omitempty"`
	Role              string    `json:"role"`
	Plan              string    `json:"plan"`
	PlanExpiresOn     string    `json:"planExpiresOn,omitempty"`
	KYCStatus         string    `json:"kycStatus"`
	TrustScore        int32     `json:"trustScore"`
	CompletedRentals  int32     `json:"completedRentals"`
	TotalTransactions int32     `json:"totalTransactions"`
	CreatedOn         time.Time `json:"createdOn"`
}

// publicUserResponse is what other members see: no contact or document data
type publicUserResponse struct {
	ID               int32  `json:"id"`
	Name             string `json:"name"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	City             string `json:"city,omitempty"`
	KYCStatus        string `json:"kycStatus"`
	TrustScore       int32  `json:"trustScore"`
	CompletedRentals int32  `json:"completedRentals"`
}

type itemResponse struct {
	ID                 int32               `json:"id"`
	OwnerID            int32               `json:"ownerId"`
	Owner              *publicUserResponse `json:"owner,omitempty"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Category           string              `json:"category"`
	Images             []string            `json:"images"`
	VideoURL           string              `json:"videoUrl,omitempty"`
	PricePerDayCents   int32               `json:"pricePerDayCents"`
	PricePerWeekCents  int32               `json:"pricePerWeekCents,omitempty"`
	PricePerMonthCents int32               `json:"pricePerMonthCents,omitempty"`
	Delivery           deliveryDTO         `json:"delivery"`
	Available          bool                `json:"available"`
	Status             string              `json:"status"`
	Lat                float64             `json:"lat"`
	Lng                float64             `json:"lng"`
	City               string              `json:"city"`
	Rating             float64             `json:"rating"`
	ReviewCount        int32               `json:"reviewCount"`
	DistanceKm         *int                `json:"distanceKm,omitempty"`
	CreatedOn          time.Time           `json:"createdOn"`
	UpdatedOn          time.Time           `json:"updatedOn"`
}

type imageResponse struct {
	Image     imageInfo `json:"image"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type imageInfo struct {
	ID       int32  `json:"id"`
	ItemID   int32  `json:"itemId"`
	FileName string `json:"fileName"`
	Key      string `json:"key"`
	MimeType string `json:"mimeType"`
	Status   string `json:"status"`
}

type uploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type availabilityResponse struct {
	Available bool            `json:"available"`
	Blocked   []rangeResponse `json:"blocked"`
}

type rentalResponse struct {
	ID               int32     `json:"id"`
	ItemID           int32     `json:"itemId"`
	RenterID         int32     `json:"renterId"`
	OwnerID          int32     `json:"ownerId"`
	StartDate        string    `json:"startDate"`
	EndDate          string    `json:"endDate"`
	TotalPriceCents  int32     `json:"totalPriceCents"`
	DeliveryMethod   string    `json:"deliveryMethod"`
	DeliveryFeeCents int32     `json:"deliveryFeeCents"`
	DeliveryAddress  string    `json:"deliveryAddress,omitempty"`
	ContractAccepted bool      `json:"contractAccepted"`
	Status           string    `json:"status"`
	CancelReason     string    `json:"cancelReason,omitempty"`
	CancelledBy      *int32    `json:"cancelledBy,omitempty"`
	CreatedOn        time.Time `json:"createdOn"`
	UpdatedOn        time.Time `json:"updatedOn"`
}

type reviewResponse struct {
	ID           int32     `json:"id"`
	RentalID     int32     `json:"rentalId"`
	ItemID       int32     `json:"itemId"`
	ReviewerID   int32     `json:"reviewerId"`
	ReviewedID   int32     `json:"reviewedId"`
	ReviewerRole string    `json:"reviewerRole"`
	Rating       int32     `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedOn    time.Time `json:"createdOn"`
}

type messageResponse struct {
	ID         int32     `json:"id"`
	SenderID   int32     `json:"senderId"`
	ReceiverID int32     `json:"receiverId"`
	ItemID     *int32    `json:"itemId,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedOn  time.Time `json:"createdOn"`
}

type conversationResponse struct {
	OtherUserID int32           `json:"otherUserId"`
	OtherName   string          `json:"otherName"`
	LastMessage messageResponse `json:"lastMessage"`
	UnreadCount int32           `json:"unreadCount"`
}

type notificationResponse struct {
	ID         int32             `json:"id"`
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"isRead"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedOn  time.Time         `json:"createdOn"`
}

type planResponse struct {
	Plan         string `json:"plan"`
	ListingLimit *int   `json:"listingLimit"`
	PriceCents   int32  `json:"priceCents"`
}

type kycResponse struct {
	ID              int32      `json:"id"`
	UserID          int32      `json:"userId"`
	DocumentKey     string     `json:"documentKey"`
	SelfieKey       string     `json:"selfieKey"`
	Status          string     `json:"status"`
	ReviewerID      *int32     `json:"reviewerId,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedOn       time.Time  `json:"createdOn"`
	ReviewedOn      *time.Time `json:"reviewedOn,omitempty"`
}

type placeResponse struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// listResponse is the envelope of every paginated collection
type listResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page,omitempty"`
	PageSize int32 `json:"pageSize,omitempty"`
}
