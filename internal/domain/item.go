package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusRented      ItemStatus = "RENTED"
	ItemStatusMaintenance ItemStatus = "MAINTENANCE"
)

// Delivery describes whether the owner ships the item and within which radius.
type Delivery struct {
	Enabled     bool  `json:"enabled"`
	FeeCents    int32 `json:"fee_cents"`
	MaxRadiusKm int32 `json:"max_radius_km"`
}

type Item struct {
	ID                 int32      `json:"id"`
	OwnerID            int32      `json:"owner_id"`
	Owner              *User      `json:"owner,omitempty"` // Populated when fetching item details
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Images             []string   `json:"images"`
	VideoURL           string     `json:"video_url"`
	PricePerDayCents   int32      `json:"price_per_day_cents"`
	PricePerWeekCents  int32      `json:"price_per_week_cents"`
	PricePerMonthCents int32      `json:"price_per_month_cents"`
	Delivery           Delivery   `json:"delivery"`
	Available          bool       `json:"available"`
	Status             ItemStatus `json:"status"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	City               string     `json:"city"`
	Rating             float64    `json:"rating"`
	ReviewCount        int32      `json:"review_count"`
	CreatedOn          time.Time  `json:"created_on"`
	UpdatedOn          time.Time  `json:"updated_on"`
	DeletedOn          *time.Time `json:"deleted_on,omitempty"`
}

// Rentable reports whether new rental requests may be placed on the item.
func (i *Item) Rentable() bool {
	return i.DeletedOn == nil && i.Available && i.Status != ItemStatusMaintenance
}

// ItemFilter narrows a catalogue search. Zero values mean "no constraint".
type ItemFilter struct {
	Query         string
	Category      string
	MaxPriceCents int32
	City          string
	Near          *GeoPoint
	RadiusKm      int
	Sort          ItemSort
	Page          int32
	PageSize      int32
}

type ItemSort string

const (
	ItemSortNewest   ItemSort = "newest"
	ItemSortPrice    ItemSort = "price"
	ItemSortRating   ItemSort = "rating"
	ItemSortDistance ItemSort = "distance"
)

// ItemWithDistance pairs a search hit with its distance from the searcher.
type ItemWithDistance struct {
	Item
	DistanceKm *int `json:"distance_km,omitempty"`
}

type ItemImage struct {
	ID          int32      `json:"id"`
	ItemID      int32      `json:"item_id"`
	UserID      int32      `json:"user_id"`
	FileName    string     `json:"file_name"`
	FilePath    string     `json:"file_path"`
	MimeType    string     `json:"mime_type"`
	Status      string     `json:"status"`               // PENDING, CONFIRMED, DELETED
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // For pending images
	CreatedOn   time.Time  `json:"created_on"`
	ConfirmedOn *time.Time `json:"confirmed_on,omitempty"`
}

const (
	ImageStatusPending   = "PENDING"
	ImageStatusConfirmed = "CONFIRMED"
	ImageStatusDeleted   = "DELETED"
)
