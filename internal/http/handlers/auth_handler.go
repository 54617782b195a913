package handlers

import (
	"errors"
	"time"

	"souqnest/internal/log"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

const msgBadLogin = "Invalid email or password"

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if u := c.Locals("user"); u != nil {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, status int, msg, email string) error {
	c.Status(status)
	return render(c, "login", fiber.Map{"Err": msg, "Email": email})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return h.loginFailed(c, fiber.StatusUnauthorized, msgBadLogin, email)
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return h.loginFailed(c, fiber.StatusUnauthorized, msgBadLogin, email)
	}

	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return h.loginFailed(c, fiber.StatusUnauthorized, msgBadLogin, email)
	}
	if err != nil {
		f := classify(err)
		log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		return h.loginFailed(c, f.Status, f.Message, email)
	}

	c.Locals("user", u)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}
