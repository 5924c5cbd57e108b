package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware)
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/{id}", "404"))
	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/{id}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(rentalTransitions.WithLabelValues("PENDING", "CONFIRMED"))
	RecordTransition("PENDING", "CONFIRMED")
	assert.Equal(t, 1.0, testutil.ToFloat64(rentalTransitions.WithLabelValues("PENDING", "CONFIRMED"))-before)

	before = testutil.ToFloat64(jobRuns.WithLabelValues("lapse_subscriptions", "true"))
	RecordJob("lapse_subscriptions", true, 20*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(jobRuns.WithLabelValues("lapse_subscriptions", "true"))-before)
}

func TestHandler(t *testing.T) {
	RecordPlanLimit("FREE")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bora_alugar_plans_limit_reached_total")
}
