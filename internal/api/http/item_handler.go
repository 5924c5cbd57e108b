package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/utils"
)

type ItemHandler struct {
	itemSvc   service.ItemService
	reviewSvc service.ReviewService
	uploadSvc service.UploadService
}

func NewItemHandler(itemSvc service.ItemService, reviewSvc service.ReviewService, uploadSvc service.UploadService) *ItemHandler {
	return &ItemHandler{itemSvc: itemSvc, reviewSvc: reviewSvc, uploadSvc: uploadSvc}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.itemSvc.CreateItem(r.Context(), userID(r), toItemInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapItem(item))
}

// Get reports the distance to the item when the caller passes lat and lng
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	viewer, err := queryPoint(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.itemSvc.GetItem(r.Context(), id, viewer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapItemWithDistance(item))
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req itemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.itemSvc.UpdateItem(r.Context(), userID(r), isAdmin(r), id, toItemInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapItem(item))
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.itemSvc.DeleteItem(r.Context(), userID(r), isAdmin(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, total, err := h.itemSvc.SearchItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, mapItemWithDistance(&items[i]))
	}
	writeJSON(w, http.StatusOK, listResponse[itemResponse]{Items: out, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

func (h *ItemHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	avail, err := h.itemSvc.CheckAvailability(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAvailability(avail))
}

func (h *ItemHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, size := page(r)
	reviews, total, err := h.reviewSvc.ListItemReviews(r.Context(), id, p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[reviewResponse]{Items: mapReviews(reviews), Total: total, Page: p, PageSize: size})
}

// RequestImage registers a pending photo and returns the URL to PUT it to
func (h *ItemHandler) RequestImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req imageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	img, ticket, err := h.uploadSvc.RequestItemImage(r.Context(), userID(r), id, req.FileName, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapImage(img, ticket))
}

func (h *ItemHandler) ConfirmImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	imageID, err := pathID(r, "imageId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.uploadSvc.ConfirmItemImage(r.Context(), userID(r), id, imageID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapItem(item))
}

// queryPoint returns nil when neither lat nor lng is given
func queryPoint(r *http.Request) (*domain.GeoPoint, error) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	p := domain.GeoPoint{Lat: lat, Lng: lng}
	if latErr != nil || lngErr != nil || !p.Valid() {
		return nil, &service.ValidationError{Fields: map[string]string{"location": "lat and lng must both be valid coordinates"}}
	}
	return &p, nil
}

func queryRange(r *http.Request) (time.Time, time.Time, error) {
	fields := map[string]string{}
	start, err := utils.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		fields["start"] = err.Error()
	}
	end, err := utils.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		fields["end"] = err.Error()
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &service.ValidationError{Fields: fields}
	}
	return start, end, nil
}

func parseFilter(r *http.Request) (domain.ItemFilter, error) {
	q := r.URL.Query()
	near, err := queryPoint(r)
	if err != nil {
		return domain.ItemFilter{}, err
	}
	p, size := page(r)
	sort := domain.ItemSort(strings.ToLower(q.Get("sort")))
	switch sort {
	case "", domain.ItemSortNewest, domain.ItemSortPrice, domain.ItemSortRating, domain.ItemSortDistance:
	default:
		return domain.ItemFilter{}, &service.ValidationError{Fields: map[string]string{"sort": "must be one of newest price rating distance"}}
	}
	return domain.ItemFilter{
		Query:         strings.TrimSpace(q.Get("q")),
		Category:      q.Get("category"),
		MaxPriceCents: int32(queryInt(r, "maxPrice", 0)),
		City:          q.Get("city"),
		Near:          near,
		RadiusKm:      queryInt(r, "radiusKm", 0),
		Sort:          sort,
		Page:          p,
		PageSize:      size,
	}, nil
}
