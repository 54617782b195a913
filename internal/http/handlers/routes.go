package handlers

import (
	"time"

	applog "souqnest/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AdminAPIPrefix is excluded from the form CSRF check; the admin API uses a
// header token instead.
const AdminAPIPrefix = "/admin/api"

// Register mounts the storefront pages and the admin API on app. Global
// middleware (request ids, session, form CSRF) is installed by the caller.
func Register(app *fiber.App, d *Deps) {
	app.Get("/", d.HomeHandler.Home)

	app.Get("/products", d.ProductHandler.List)
	app.Get("/products/:slug", d.ProductHandler.Detail)
	app.Get("/suppliers", d.SupplierHandler.List)
	app.Get("/suppliers/:id", d.SupplierHandler.Detail)

	// Cart
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/items/:id/increment", d.CartHandler.Increment)
	app.Post("/cart/items/:id/decrement", d.CartHandler.Decrement)
	app.Post("/cart/items/:id/quantity", d.CartHandler.Quantity)
	app.Post("/cart/items/:id/remove", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)
	app.Post("/cart/checkout", d.CartHandler.Checkout)

	// RFQ wizard
	app.Get("/rfq", d.RFQHandler.View)
	app.Post("/rfq/items", d.RFQHandler.AddItem)
	app.Post("/rfq/items/:id/remove", d.RFQHandler.RemoveItem)
	app.Post("/rfq/items/:id/quantity", d.RFQHandler.Quantity)
	app.Post("/rfq/contact", d.RFQHandler.Contact)
	app.Post("/rfq/next", d.RFQHandler.Next)
	app.Post("/rfq/back", d.RFQHandler.Back)
	app.Post("/rfq/reset", d.RFQHandler.Reset)
	app.Post("/rfq/submit", limiter.New(limiter.Config{
		Max:        5,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|rfq"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.rfq.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many requests. Please wait a minute and try again."})
		},
	}), d.RFQHandler.Submit)

	// Contact
	app.Get("/contact", d.ContactHandler.Form)
	app.Post("/contact", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|contact"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.contact.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many requests. Please try again later."})
		},
	}), d.ContactHandler.Submit)

	// Auth routes (login throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	registerAdmin(app, d.AdminHandler)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}

func registerAdmin(app *fiber.App, h *AdminHandler) {
	admin := app.Group(AdminAPIPrefix, RequireAdmin(h.Auth), csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_admin",
		CookieSameSite: "Strict",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"surface": "admin"})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Reload and try again."})
		},
	}), logWrites)

	admin.Get("/me", h.Me)
	admin.Get("/dashboard", h.DashboardSummary)
	admin.Get("/search", h.Search)

	admin.Get("/rfqs", h.ListRFQs)
	admin.Get("/rfqs/:id", h.GetRFQ)
	admin.Patch("/rfqs/:id/status", h.UpdateRFQStatus)

	admin.Get("/suppliers", h.ListSuppliers)
	admin.Post("/suppliers", h.CreateSupplier)
	admin.Post("/suppliers/bulk", h.BulkCreateSuppliers)
	admin.Post("/suppliers/bulk-upload", h.BulkUploadSuppliers)
	admin.Get("/suppliers/:id", h.GetSupplier)
	admin.Put("/suppliers/:id", h.UpdateSupplier)
	admin.Put("/suppliers/:id/industries", h.UpdateSupplierIndustries)
	admin.Delete("/suppliers/:id", h.DeleteSupplier)

	admin.Get("/products", h.ListProducts)
	admin.Post("/products", h.CreateProduct)
	admin.Get("/products/slug/:slug", h.GetProduct)
	admin.Put("/products/:id", h.UpdateProduct)
	admin.Put("/products/:id/prices", h.UpdatePrices())
	admin.Put("/products/:id/industries", h.UpdateProductIndustries())
	admin.Put("/products/:id/features", h.UpdateFeatures())
	admin.Put("/products/:id/specifications", h.UpdateSpecifications())
	admin.Put("/products/:id/faqs", h.UpdateFAQs())
	admin.Delete("/products/:id", h.DeleteProduct)
	admin.Get("/products/:id/features", h.ListFeatures)
	admin.Post("/products/:id/features", h.AddFeature)
	admin.Delete("/products/:id/features/:featureId", h.DeleteFeature)

	admin.Get("/categories", h.ListCategories)
	admin.Post("/categories", h.CreateCategory)
	admin.Put("/categories/:id", h.UpdateCategory)
	admin.Delete("/categories/:id", h.DeleteCategory)

	admin.Get("/industries", h.ListIndustries)
	admin.Post("/industries", h.CreateIndustry)
	admin.Put("/industries/:id", h.UpdateIndustry)
	admin.Delete("/industries/:id", h.DeleteIndustry)
}
