package server

import (
	"strconv"
	"time"

	"order-service/internal/domain"
	"order-service/internal/logging"
	"order-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Auth resolves the caller once per request from the claims the gateway
// forwards as headers. Exactly one role is assigned; admin wins when both
// markers are present.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := domain.Identity{Email: c.GetHeader("X-User-Email")}
		switch c.GetHeader("X-Role") {
		case string(domain.RoleAdmin):
			identity.Role = domain.RoleAdmin
		case string(domain.RoleUser):
			identity.Role = domain.RoleUser
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

// RequestID honors an inbound X-Request-Id or assigns one, echoes it on the
// response and emits one access-log line per request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)

		start := time.Now()
		c.Next()

		logging.Log(logging.Fields{
			Service:    "order-service",
			RequestID:  id,
			Status:     strconv.Itoa(c.Writer.Status()),
			DurationMS: time.Since(start).Milliseconds(),
			Message:    c.Request.Method + " " + c.Request.URL.Path,
		})
	}
}

// Metrics records request counts and latency per route.
func Metrics(m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
