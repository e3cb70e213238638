package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/auth"
	"github.com/example/parlour/pkg/metrics"
)

const identityKey = "identity"

// ErrorResponse mirrors the api package's error body to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// OptionalIdentity resolves the bearer token, if any, and stores the result
// for IdentityFrom. A request without a token passes through as Absent. A
// token that fails verification ends the request with 401.
func OptionalIdentity(verifier auth.TokenVerifier, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	if verifier == nil {
		verifier = auth.DisabledVerifier{}
	}
	return func(c *gin.Context) {
		id := auth.Resolve(c.Request.Context(), verifier, c.GetHeader("Authorization"))
		m.ObserveAuth(id.Outcome.String())

		if id.Outcome == auth.Rejected {
			logger.Warn("Rejected ID token",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(id.Err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by OptionalIdentity, or an Absent
// identity if the middleware did not run.
func IdentityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{Outcome: auth.Absent}
}
