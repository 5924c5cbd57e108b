package geocoding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"

	"github.com/tidwall/gjson"
)

// UnknownLocation is reported whenever the provider cannot name a city
const UnknownLocation = "unknown location"

type Place struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type Geocoder interface {
	// Reverse never fails: provider errors degrade to UnknownLocation
	Reverse(ctx context.Context, p domain.GeoPoint) Place
}

// Nominatim reverse geocodes against a Nominatim compatible endpoint
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatim(cfg config.GeocodingConfig) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
	}
}

func (n *Nominatim) Reverse(ctx context.Context, p domain.GeoPoint) Place {
	if !p.Valid() {
		return Place{City: UnknownLocation}
	}
	place, err := n.reverse(ctx, p)
	logger.ExternalServiceResult("geocoding", "reverse", err, "lat", p.Lat, "lng", p.Lng)
	if err != nil {
		return Place{City: UnknownLocation}
	}
	return place
}

func (n *Nominatim) reverse(ctx context.Context, p domain.GeoPoint) (Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', 6, 64))
	q.Set("zoom", "10")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept-Language", "pt-BR")

	logger.ExternalServiceCall("geocoding", "reverse", "lat", p.Lat, "lng", p.Lng)
	resp, err := n.client.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Place{}, err
	}
	if !gjson.ValidBytes(body) {
		return Place{}, fmt.Errorf("geocoding returned invalid json")
	}

	address := gjson.GetBytes(body, "address")
	// smaller municipalities come back as town or village instead of city
	city := ""
	for _, field := range []string{"city", "town", "village", "municipality"} {
		if v := address.Get(field).String(); v != "" {
			city = v
			break
		}
	}
	if city == "" {
		return Place{}, fmt.Errorf("no city in geocoding response")
	}

	return Place{
		City:    NormalizeCity(city),
		State:   address.Get("state").String(),
		Country: address.Get("country_code").String(),
	}, nil
}

// NormalizeCity trims, collapses whitespace and title-cases a city name so
// "  são   PAULO " and "São Paulo" compare equal. Brazilian connectives stay lower case.
func NormalizeCity(city string) string {
	words := strings.Fields(strings.ToLower(city))
	for i, w := range words {
		if i > 0 && isConnective(w) {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ")
}

func isConnective(w string) bool {
	switch w {
	case "de", "da", "do", "das", "dos", "e":
		return true
	}
	return false
}

// Static always answers with the same place; used when geocoding is disabled
type Static struct {
	Place Place
}

func (s Static) Reverse(ctx context.Context, p domain.GeoPoint) Place {
	if s.Place.City == "" {
		return Place{City: UnknownLocation}
	}
	return s.Place
}
