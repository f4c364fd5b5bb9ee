package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the shared secret on mutating and listing API calls.
const APIKeyHeader = "X-API-Key"

// APIKey gates a route behind a shared secret. The key is injected once at
// construction time; no environment lookups happen per request. The
// comparison is constant-time.
//
// An empty configured key rejects every request rather than disabling the
// check, so a missing API_KEY can never open the API by accident.
func APIKey(key string) fiber.Handler {
	secret := []byte(key)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get(APIKeyHeader))
		if len(secret) == 0 || subtle.ConstantTimeCompare(got, secret) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing API key")
		}
		return c.Next()
	}
}
