package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tinttrack/internal/identity"
)

// requireAuth resolves the bearer token into a principal and stores it on the
// request context. Requests without a valid token are rejected with 401.
func requireAuth(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, identity.ErrUnauthenticated, "")
			return
		}

		p, err := ids.Authenticate(c.Request.Context(), raw)
		if err != nil {
			respondError(c, err, "")
			return
		}

		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
