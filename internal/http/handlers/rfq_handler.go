package handlers

import (
	"errors"

	"souqnest/internal/domain"
	"souqnest/internal/log"
	"souqnest/internal/rfq"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type RFQHandler struct {
	RFQ     *services.RFQService
	Catalog *services.CatalogService
}

// wizard renders the RFQ page for d with an optional error and field errors.
func (h *RFQHandler) wizard(c *fiber.Ctx, d *rfq.Draft, errMsg string, fields map[string]string) error {
	data := fiber.Map{
		"Title":  "Request for Quotation",
		"Draft":  d,
		"Step":   int(d.Step),
		"Err":    errMsg,
		"Fields": fields,
	}
	if d.Step == rfq.StepProducts {
		if page, err := h.Catalog.ListProducts(c.UserContext(), domain.ProductQuery{Limit: maxPageSize}); err == nil {
			data["Catalog"] = page.Data
		}
	}
	return render(c, "rfq", data)
}

// stepError re-renders the wizard for a failed transition.
func (h *RFQHandler) stepError(c *fiber.Ctx, d *rfq.Draft, err error) error {
	switch {
	case errors.Is(err, rfq.ErrNoItems):
		log.Security(c, "validation.fail", map[string]any{"field": "items"})
		c.Status(fiber.StatusBadRequest)
		return h.wizard(c, d, "Add at least one product to your request.", nil)
	case errors.Is(err, rfq.ErrInvalidContact):
		var fe validate.FieldErrors
		errors.As(err, &fe)
		log.Security(c, "validation.fail", map[string]any{"field": "contact", "fields": keys(fe)})
		c.Status(fiber.StatusBadRequest)
		return h.wizard(c, d, "Please correct the highlighted fields.", fe)
	}
	f := classify(err)
	logFailure(c, "rfq.step", err, f)
	c.Status(f.Status)
	return h.wizard(c, d, f.Message, f.Fields)
}

// GET /rfq
func (h *RFQHandler) View(c *fiber.Ctx) error {
	return h.wizard(c, h.RFQ.Draft(ensureSID(c)), "", nil)
}

// POST /rfq/items adds a product, e.g. from a product page with a quantity.
func (h *RFQHandler) AddItem(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.FormValue("product"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusBadRequest).SendString("missing product")
	}
	d, err := h.RFQ.AddProduct(c.UserContext(), ensureSID(c), slug, validate.Qty(c.FormValue("qty")))
	if err != nil {
		return pageError(c, "rfq.item.add", err)
	}
	log.Info(c, "rfq.item.add", map[string]any{"product": slug, "items": d.Count()})
	return c.Redirect("/rfq")
}

// POST /rfq/items/:id/remove
func (h *RFQHandler) RemoveItem(c *fiber.Ctx) error {
	id, ok := itemID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item")
	}
	h.RFQ.Draft(ensureSID(c)).RemoveItem(id)
	return c.Redirect("/rfq")
}

// POST /rfq/items/:id/quantity; quantities are clamped to at least 1.
func (h *RFQHandler) Quantity(c *fiber.Ctx) error {
	id, ok := itemID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item")
	}
	n, ok := formQty(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	h.RFQ.Draft(ensureSID(c)).SetQuantity(id, n)
	return c.Redirect("/rfq")
}

func contactForm(c *fiber.Ctx) rfq.Contact {
	return rfq.Contact{
		CompanyName: c.FormValue("companyName"),
		ContactName: c.FormValue("contactName"),
		Email:       c.FormValue("email"),
		Phone:       c.FormValue("phone"),
		Country:     c.FormValue("country"),
		Message:     c.FormValue("message"),
	}
}

// POST /rfq/contact saves the company step and, unless op=save, advances.
func (h *RFQHandler) Contact(c *fiber.Ctx) error {
	d := h.RFQ.Draft(ensureSID(c))
	d.SetContact(contactForm(c))
	if c.FormValue("op") == "save" {
		return c.Redirect("/rfq")
	}
	if err := d.Next(); err != nil {
		return h.stepError(c, d, err)
	}
	return c.Redirect("/rfq")
}

// POST /rfq/next
func (h *RFQHandler) Next(c *fiber.Ctx) error {
	d := h.RFQ.Draft(ensureSID(c))
	if err := d.Next(); err != nil {
		return h.stepError(c, d, err)
	}
	return c.Redirect("/rfq")
}

// POST /rfq/back
func (h *RFQHandler) Back(c *fiber.Ctx) error {
	h.RFQ.Draft(ensureSID(c)).Back()
	return c.Redirect("/rfq")
}

// POST /rfq/reset
func (h *RFQHandler) Reset(c *fiber.Ctx) error {
	h.RFQ.Draft(ensureSID(c)).Reset()
	log.Info(c, "rfq.reset", nil)
	return c.Redirect("/rfq")
}

// POST /rfq/submit posts the draft once. A failed submission keeps the
// draft for a manual retry.
func (h *RFQHandler) Submit(c *fiber.Ctx) error {
	created, d, err := h.RFQ.Submit(c.UserContext(), ensureSID(c))
	if err != nil {
		return h.stepError(c, d, err)
	}
	log.Audit(c, "rfq.submit.success", map[string]any{"rfq_id": created.ID, "items": len(created.Items)})
	return c.Redirect("/rfq")
}
