package handlers

import (
	"strings"

	"souqnest/internal/domain"
	"souqnest/internal/log"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	Catalog *services.CatalogService
}

var supplierTypes = []domain.SupplierType{domain.Manufacturer, domain.Trader, domain.Contractor, domain.ServiceProvider}

// GET /suppliers
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var q domain.SupplierQuery
	_ = c.QueryParser(&q)
	q.Page, q.Limit = pageBounds(q.Page, q.Limit)
	inds, _ := h.Catalog.Industries(ctx)
	data := fiber.Map{"Title": "Suppliers", "Q": q, "Types": supplierTypes, "Industries": inds, "Suppliers": []domain.Supplier{}}

	bad := ""
	if strings.TrimSpace(q.Search) != "" {
		s, ok := validate.Q(q.Search)
		if !ok {
			bad = "search"
		}
		q.Search = s
	}
	if q.SupplierType != "" && !domain.SupplierType(q.SupplierType).Valid() {
		bad = "supplierType"
	}
	if q.IndustryID != "" {
		if _, ok := validate.ID(q.IndustryID); !ok {
			bad = "industryId"
		}
	}
	if bad != "" {
		log.Security(c, "validation.fail", map[string]any{"field": bad})
		data["Err"] = "Invalid filter"
		c.Status(fiber.StatusBadRequest)
		return render(c, "suppliers", data)
	}

	page, err := h.Catalog.ListSuppliers(ctx, q)
	if err != nil {
		f := classify(err)
		logFailure(c, "suppliers.list", err, f)
		data["Err"] = f.Message
		c.Status(f.Status)
		return render(c, "suppliers", data)
	}
	data["Q"] = q
	data["Suppliers"] = page.Data
	data["Meta"] = page.Meta
	return render(c, "suppliers", data)
}

// GET /suppliers/:id
func (h *SupplierHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "supplier"})
		return notFound(c, "This supplier is no longer listed")
	}
	ctx := c.UserContext()
	s, err := h.Catalog.Supplier(ctx, id)
	if err != nil {
		if classify(err).Status == fiber.StatusNotFound {
			return notFound(c, "This supplier is no longer listed")
		}
		return pageError(c, "suppliers.detail", err)
	}
	if len(s.Industries) == 0 {
		if inds, ierr := h.Catalog.SupplierIndustries(ctx, id); ierr == nil {
			s.Industries = inds
		}
	}
	return render(c, "supplier", fiber.Map{"Title": s.CompanyName, "S": s})
}
