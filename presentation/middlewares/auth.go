package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authUseCase "github.com/banterhq/banter/application/usecases/auth"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/persistence/repository"
	"github.com/banterhq/banter/infrastructure/token"
)

const (
	UserContextKey = "user"
)

// AuthMiddleware resolves the access token from the request and loads the
// authenticated user into the gin context. Requests without a valid token
// are rejected with 401.
func AuthMiddleware(authUC authUseCase.AuthUseCase, tokens *token.Manager, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := token.FromRequest(c.Request)
		if raw == "" {
			unauthorized(c)
			return
		}

		userID, err := tokens.VerifyAccessToken(raw)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := authUC.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				unauthorized(c)
				return
			}
			logger.Error("failed to load authenticated user", zap.Error(err), zap.String("userID", userID))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_server_error",
				"message": "Failed to resolve user session",
			})
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)

		c.Next()
	}
}

// OptionalAuth resolves the current user when a valid access token is
// present and stays silent otherwise. Handlers see the absence through
// CurrentUser returning false, never through an aborted request.
func OptionalAuth(authUC authUseCase.AuthUseCase, tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := token.FromRequest(c.Request)
		if raw == "" {
			c.Next()
			return
		}

		userID, err := tokens.VerifyAccessToken(raw)
		if err != nil {
			c.Next()
			return
		}

		if user, err := authUC.GetByID(c.Request.Context(), userID); err == nil {
			c.Set(UserContextKey, user)
		}

		c.Next()
	}
}

// CurrentUser reports the authenticated user of the request, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}

	u, ok := user.(*model.User)
	return u, ok
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "Authentication required",
	})
	c.Abort()
}
