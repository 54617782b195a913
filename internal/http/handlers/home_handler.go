package handlers

import (
	"souqnest/internal/catalog"
	"souqnest/internal/domain"
	"souqnest/internal/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

type HomeHandler struct {
	Catalog *services.CatalogService
}

const homeProducts = 8

// Home shows categories, featured suppliers and the newest products. A
// section whose source fails is left empty under a connection banner.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		cats      []domain.Category
		suppliers domain.Page[domain.Supplier]
		products  domain.Page[domain.Product]
		errs      [3]error
	)
	var g errgroup.Group
	g.Go(func() error { cats, errs[0] = h.Catalog.CategoryTree(ctx); return nil })
	g.Go(func() error {
		suppliers, errs[1] = h.Catalog.ListSuppliers(ctx, domain.SupplierQuery{Limit: 50})
		return nil
	})
	g.Go(func() error {
		products, errs[2] = h.Catalog.ListProducts(ctx, domain.ProductQuery{Sort: catalog.SortNewest, Limit: homeProducts})
		return nil
	})
	_ = g.Wait()

	data := fiber.Map{"Title": "SouqNest", "Categories": cats, "Products": products.Data}
	var featured []domain.Supplier
	for _, s := range suppliers.Data {
		if s.IsFeatured {
			featured = append(featured, s)
		}
	}
	data["Suppliers"] = featured
	for _, err := range errs {
		if err != nil {
			f := classify(err)
			logFailure(c, "home.load", err, f)
			data["Err"] = f.Message
			break
		}
	}
	return render(c, "home", data)
}
