package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const actorIDKey = "actor_id"

// TokenParser verifies a bearer token and returns the actor id it carries
type TokenParser interface {
	Parse(token string) (string, error)
}

// authMiddleware rejects requests without a valid bearer token and
// stores the token subject under actorIDKey
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		actorID, err := s.tokens.Parse(token)
		if err != nil {
			s.logger.Info("Rejected token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(actorIDKey, actorID)
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

func actorID(c *gin.Context) string {
	return c.GetString(actorIDKey)
}
