package middlewares

import (
	"context"
	"strings"

	"pragatipath-be/models"
	"pragatipath-be/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IdentityKey = "identity"
	UserIDKey   = "user_id"
)

type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// IdentityResolver loads the caller named in a verified token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*models.Identity, error)
}

// AuthMiddleware requires a valid bearer token and attaches the caller's identity.
func AuthMiddleware(tokens TokenVerifier, users IdentityResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extracting token from "Bearer <token>" format
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			utils.RespondError(c, logger, utils.Unauthorized("Access denied. No token provided."))
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			utils.RespondError(c, logger, utils.Unauthorized("Invalid token."))
			return
		}

		identity, err := users.ResolveIdentity(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.RespondError(c, logger, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserIDKey, identity.ID.Hex())
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok && identity != nil
}
