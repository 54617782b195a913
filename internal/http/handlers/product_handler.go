package handlers

import (
	"strings"

	"souqnest/internal/catalog"
	"souqnest/internal/domain"
	"souqnest/internal/log"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

const maxPageSize = 48

// Sorts lists the sort options offered on listing pages.
var Sorts = []struct{ Key, Label string }{
	{catalog.SortNewest, "Newest"},
	{catalog.SortOldest, "Oldest"},
	{catalog.SortAZ, "Name A-Z"},
	{catalog.SortZA, "Name Z-A"},
	{catalog.SortPriceAsc, "Price: low to high"},
	{catalog.SortPriceDesc, "Price: high to low"},
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = catalog.DefaultLimit
	}
	return page, min(limit, maxPageSize)
}

// productQuery reads and checks the listing filters. Unparsable price bounds
// pass through; the filter treats them as absent.
func productQuery(c *fiber.Ctx) (domain.ProductQuery, error) {
	var q domain.ProductQuery
	if err := c.QueryParser(&q); err != nil {
		return q, validate.FieldErrors{"query": "is invalid"}
	}
	fe := validate.FieldErrors{}
	if strings.TrimSpace(q.Search) != "" {
		s, ok := validate.Q(q.Search)
		if !ok {
			fe["search"] = "use letters and numbers only"
		}
		q.Search = s
	} else {
		q.Search = ""
	}
	for name, v := range map[string]string{"categoryId": q.CategoryID, "industryId": q.IndustryID} {
		if v != "" {
			if _, ok := validate.ID(v); !ok {
				fe[name] = "is invalid"
			}
		}
	}
	q.Currency = strings.ToUpper(strings.TrimSpace(q.Currency))
	q.Page, q.Limit = pageBounds(q.Page, q.Limit)
	if len(fe) > 0 {
		return q, fe
	}
	return q, nil
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	q, qerr := productQuery(c)
	cats, _ := h.Catalog.Categories(ctx)
	inds, _ := h.Catalog.Industries(ctx)
	data := fiber.Map{"Title": "Products", "Q": q, "Sorts": Sorts, "Categories": cats, "Industries": inds}
	if qerr != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "products.query"})
		data["Err"] = "Enter a valid keyword (letters/numbers only)"
		data["Products"] = []domain.Product{}
		c.Status(fiber.StatusBadRequest)
		return render(c, "products", data)
	}
	page, err := h.Catalog.ListProducts(ctx, q)
	if err != nil {
		f := classify(err)
		logFailure(c, "products.list", err, f)
		data["Err"] = f.Message
		data["Products"] = []domain.Product{}
		c.Status(f.Status)
		return render(c, "products", data)
	}
	data["Products"] = page.Data
	data["Meta"] = page.Meta
	return render(c, "products", data)
}

// GET /products/:slug
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	ctx := c.UserContext()
	p, err := h.Catalog.Product(ctx, slug)
	if err != nil {
		if f := classify(err); f.Status == fiber.StatusNotFound {
			return notFound(c, "This item is no longer available")
		}
		return pageError(c, "products.detail", err)
	}
	if len(p.Features) == 0 && p.ID != "" {
		if fs, ferr := h.Catalog.Features(ctx, p.ID); ferr == nil {
			p.Features = fs
		}
	}
	return render(c, "product", fiber.Map{"Title": p.Name, "P": p, "Price": p.FirstPrice()})
}
