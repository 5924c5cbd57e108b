package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func newNominatim(url string) *Nominatim {
	return NewNominatim(config.GeocodingConfig{BaseURL: url, UserAgent: "test", TimeoutMS: 500})
}

func TestNominatim_Reverse(t *testing.T) {
	sp := domain.GeoPoint{Lat: -23.5505, Lng: -46.6333}

	t.Run("City", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reverse", r.URL.Path)
			assert.Equal(t, "-23.550500", r.URL.Query().Get("lat"))
			assert.Equal(t, "test", r.Header.Get("User-Agent"))
			w.Write([]byte(`{"address":{"city":"São Paulo","state":"São Paulo","country_code":"br"}}`))
		}))
		defer srv.Close()

		place := newNominatim(srv.URL).Reverse(context.Background(), sp)
		assert.Equal(t, "São Paulo", place.City)
		assert.Equal(t, "br", place.Country)
	})

	t.Run("Town instead of city", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{"town":"CAMPOS DO JORDÃO"}}`))
		}))
		defer srv.Close()

		assert.Equal(t, "Campos do Jordão", newNominatim(srv.URL).Reverse(context.Background(), sp).City)
	})

	t.Run("Provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		assert.Equal(t, UnknownLocation, newNominatim(srv.URL).Reverse(context.Background(), sp).City)
	})

	t.Run("Garbage body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		assert.Equal(t, UnknownLocation, newNominatim(srv.URL).Reverse(context.Background(), sp).City)
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer srv.Close()

		assert.Equal(t, UnknownLocation, newNominatim(srv.URL).Reverse(context.Background(), sp).City)
	})

	t.Run("Invalid point skips the call", func(t *testing.T) {
		place := newNominatim("http://127.0.0.1:1").Reverse(context.Background(), domain.GeoPoint{Lat: 120, Lng: 0})
		assert.Equal(t, UnknownLocation, place.City)
	})
}

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "São Paulo", NormalizeCity("  são   PAULO "))
	assert.Equal(t, "Rio de Janeiro", NormalizeCity("RIO DE JANEIRO"))
	assert.Equal(t, "", NormalizeCity("   "))
}

func TestStatic(t *testing.T) {
	assert.Equal(t, UnknownLocation, Static{}.Reverse(context.Background(), domain.GeoPoint{}).City)
	assert.Equal(t, "Recife", Static{Place: Place{City: "Recife"}}.Reverse(context.Background(), domain.GeoPoint{}).City)
}
