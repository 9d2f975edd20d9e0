package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/kshadid/thegiftspace/internal/domain"
)

const userContextKey = "current_user"

// AuthMiddleware verifies the bearer token and stores the resolved user in
// the request context.
func AuthMiddleware(auth domain.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")

		user, err := auth.VerifyToken(c.Context(), token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("Token verification failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(userContextKey, user)

		return c.Next()
	}
}

// AdminMiddleware rejects requests whose user is not a platform admin. It
// must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by AuthMiddleware, or
// nil for unauthenticated requests.
func CurrentUser(c fiber.Ctx) *domain.User {
	user, _ := c.Locals(userContextKey).(*domain.User)
	return user
}
