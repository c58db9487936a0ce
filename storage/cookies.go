package storage

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieStore adapts Fiber cookies to the login.Storage capability.
// Values live in the browser, so they survive server restarts and
// stay scoped to the visitor. A missing or unreadable cookie reads as
// absence, matching the controller's fallback behavior.
type CookieStore struct {
	ctx    *fiber.Ctx
	maxAge int
}

const yearSeconds = 365 * 24 * 60 * 60

// NewCookieStore creates a durable cookie store (one year expiry)
func NewCookieStore(c *fiber.Ctx) *CookieStore {
	return &CookieStore{ctx: c, maxAge: yearSeconds}
}

// NewTransientCookieStore creates a store whose cookies expire with
// the browser session. Used for the password-visibility flag, which
// must not persist.
func NewTransientCookieStore(c *fiber.Ctx) *CookieStore {
	return &CookieStore{ctx: c}
}

// Get returns the cookie value for key
func (s *CookieStore) Get(key string) (string, bool) {
	value := s.ctx.Cookies(key)
	if value == "" {
		return "", false
	}
	return value, true
}

// Set writes the cookie for key
func (s *CookieStore) Set(key, value string) {
	s.ctx.Cookie(&fiber.Cookie{
		Name:     key,
		Value:    value,
		MaxAge:   s.maxAge,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

// Remove expires the cookie for key
func (s *CookieStore) Remove(key string) {
	s.ctx.Cookie(&fiber.Cookie{
		Name:    key,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		MaxAge:  -1,
		Path:    "/",
	})
}
