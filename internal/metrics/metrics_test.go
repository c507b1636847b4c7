package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/posts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/posts/:id", "200")))
}

func TestRecordAndHandler(t *testing.T) {
	m := New()
	m.Record(EventReaction, "like")
	m.Record(EventReaction, "like")
	m.RateLimited("/api/posts")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DomainEventsTotal.WithLabelValues(EventReaction, "like")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "suara_domain_events_total"))
	assert.True(t, strings.Contains(w.Body.String(), "suara_rate_limited_total"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Record(EventPostCreated, "")
	m.RateLimited("/x")
}
