package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/domain"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// Middleware validates bearer tokens and stores the caller's identity in
// the request locals.
type Middleware struct {
	authority *Authority
}

// NewMiddleware constructs middleware.
func NewMiddleware(authority *Authority) *Middleware {
	return &Middleware{authority: authority}
}

// Handle enforces authentication for protected routes. Storage failures are
// mapped to a retryable 503, never to a denial.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	raw := authHeader
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		raw = parts[1]
	}

	identity, err := m.authority.Authorize(c.UserContext(), raw)
	if err != nil {
		return MapDecisionError(err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// MapDecisionError translates authorization errors into transport errors.
func MapDecisionError(err error) error {
	var storageErr *StorageError
	switch {
	case errors.As(err, &storageErr):
		return apperrors.NewUnavailable(storageErr)
	case errors.Is(err, ErrEmailNotVerified):
		return apperrors.NewForbidden("verify your email before using the api service")
	case errors.Is(err, ErrUnknownSubject):
		return apperrors.NewUnauthorized("no user associated with this token")
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewUnauthorized("token expired")
	case errors.Is(err, ErrTokenRevoked), errors.Is(err, ErrTokenMalformed):
		return apperrors.NewUnauthorized("invalid token")
	default:
		return apperrors.MapError(err)
	}
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
