package handlers

import (
	"strings"

	"souqnest/internal/cart"
	"souqnest/internal/domain"
	"souqnest/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ensureSID(c *fiber.Ctx) string {
	if sid, ok := c.Locals("sid").(string); ok && sid != "" {
		return sid
	}
	sid := c.Cookies("sid")
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	c.Locals("sid", sid)
	return sid
}

// sessionCart returns the cart Session loaded for this request, opening it
// when the middleware did not run.
func sessionCart(c *fiber.Ctx, carts *services.CartService) *cart.Cart {
	if ct, ok := c.Locals("cart").(*cart.Cart); ok {
		return ct
	}
	ct := carts.Open(ensureSID(c))
	c.Locals("cart", ct)
	return ct
}

// Session issues the sid cookie and attaches the logged-in user and the
// session cart to the request. The cart size in locals follows mutations
// made later in the request.
func Session(auth *services.AuthService, carts *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/static/") {
			return c.Next()
		}
		sid := ensureSID(c)
		if u, err := auth.CurrentUser(sid); err == nil && u != nil {
			c.Locals("user", u)
		}
		ct := carts.Open(sid)
		c.Locals("cart", ct)
		c.Locals("cartCount", ct.Count())
		unsubscribe := ct.Subscribe(func([]domain.CartItem) {
			c.Locals("cartCount", ct.Count())
		})
		defer unsubscribe()
		return c.Next()
	}
}
