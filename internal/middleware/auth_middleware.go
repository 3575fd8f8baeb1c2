package middleware

import (
	"context"
	"fmt"
	"strings"

	"essay-hub/internal/dto"
	"essay-hub/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	// TokenQueryParam carries the access token on websocket upgrades, where
	// browsers cannot set headers.
	TokenQueryParam = "token"
	accessTokenType = "access"
)

// TokenValidator is the part of service.AuthService the middleware needs.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// Protected is a middleware function that protects routes by requiring a valid JWT.
// It validates the token and sets the userID in the context.
func Protected(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(AuthorizationHeader))
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is missing")
		}
		// fasthttp trims trailing whitespace, so "Bearer " arrives as "Bearer".
		if strings.EqualFold(authHeader, strings.TrimSpace(BearerSchema)) {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return unauthorized(c, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}
		return authenticate(c, validator, tokenString)
	}
}

// ProtectedQuery authenticates with the ?token= query parameter, falling back
// to the Authorization header.
func ProtectedQuery(validator TokenValidator) fiber.Handler {
	header := Protected(validator)
	return func(c *fiber.Ctx) error {
		tokenString := strings.TrimSpace(c.Query(TokenQueryParam))
		if tokenString == "" {
			return header(c)
		}
		return authenticate(c, validator, tokenString)
	}
}

func authenticate(c *fiber.Ctx, validator TokenValidator, tokenString string) error {
	claims, err := validator.ValidateJWT(c.UserContext(), tokenString)
	if err != nil {
		logger.Get().Debug("JWT validation failed", zap.Error(err), zap.String("path", c.Path()))
		return unauthorized(c, "INVALID_TOKEN", err.Error())
	}
	if claims.TokenType != accessTokenType {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Code:    "INVALID_TOKEN_TYPE",
			Message: fmt.Sprintf("Invalid token type: expected access, got %s", claims.TokenType),
			Status:  fiber.StatusForbidden,
		})
	}

	c.Locals(UserIDKey, claims.UserID)
	return c.Next()
}

// OptionalAuth is a middleware function that optionally authenticates a user.
// If a valid access token is provided, it sets the userID in the context.
// Otherwise, it proceeds without setting the userID, allowing for anonymous access.
func OptionalAuth(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Next()
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			logger.Get().Debug("OptionalAuth: Authorization scheme is not Bearer, proceeding as anonymous.")
			return c.Next()
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return c.Next()
		}

		claims, err := validator.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("OptionalAuth: JWT validation failed, proceeding as anonymous.", zap.Error(err))
			return c.Next()
		}
		if claims.TokenType != accessTokenType {
			logger.Get().Debug("OptionalAuth: Invalid token type, proceeding as anonymous.", zap.String("tokenType", claims.TokenType))
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}
