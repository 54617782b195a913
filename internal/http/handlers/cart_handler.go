package handlers

import (
	"strconv"
	"strings"

	"souqnest/internal/log"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
	RFQ  *services.RFQService
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.FormValue("product"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusBadRequest).SendString("missing product")
	}
	p, err := h.Cart.AddBySlug(c.UserContext(), sessionCart(c, h.Cart), slug)
	if err != nil {
		return pageError(c, "cart.add", err)
	}
	log.Info(c, "cart.add", map[string]any{"product_id": p.ID})
	return c.Redirect("/cart")
}

// itemID reads the :id route param shared by the per-item cart actions.
func itemID(c *fiber.Ctx) (string, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "item"})
	}
	return id, ok
}

// POST /cart/items/:id/increment
func (h *CartHandler) Increment(c *fiber.Ctx) error {
	id, ok := itemID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item")
	}
	sessionCart(c, h.Cart).Increment(id)
	return c.Redirect("/cart")
}

// POST /cart/items/:id/decrement
func (h *CartHandler) Decrement(c *fiber.Ctx) error {
	id, ok := itemID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item")
	}
	sessionCart(c, h.Cart).Decrement(id)
	return c.Redirect("/cart")
}

// POST /cart/items/:id/quantity; a quantity below 1 removes the item.
func (h *CartHandler) Quantity(c *fiber.Ctx) error {
	id, ok := itemID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item")
	}
	n, ok := formQty(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	sessionCart(c, h.Cart).UpdateQuantity(id, n)
	return c.Redirect("/cart")
}

// POST /cart/items/:id/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := itemID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item")
	}
	sessionCart(c, h.Cart).Remove(id)
	return c.Redirect("/cart")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sessionCart(c, h.Cart).Clear()
	log.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

// POST /cart/checkout moves the cart into the RFQ wizard.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	ct := sessionCart(c, h.Cart)
	if ct.Count() == 0 {
		return c.Redirect("/cart")
	}
	d := h.RFQ.ProceedFromCart(ensureSID(c), ct)
	log.Info(c, "cart.checkout", map[string]any{"items": d.Count()})
	return c.Redirect("/rfq")
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv := h.Cart.View(sessionCart(c, h.Cart))
	return render(c, "cart", fiber.Map{"Title": "Cart", "Cart": cv})
}

// formQty reads an explicit quantity field. Unlike validate.Qty it keeps
// zero and negatives, which mean "remove".
func formQty(c *fiber.Ctx) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.FormValue("qty")))
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return 0, false
	}
	return min(n, 10000), true
}
