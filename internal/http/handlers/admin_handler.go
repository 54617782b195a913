package handlers

import (
	"io"

	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin JSON API. Every route runs behind
// RequireAdmin, so a session user is always present.
type AdminHandler struct {
	Admin     *services.AdminService
	Dashboard *services.DashboardService
	Catalog   *services.CatalogService
	Auth      *services.AuthService
	Demo      bool
}

func (h *AdminHandler) token(c *fiber.Ctx) string { return h.Auth.Token(ensureSID(c)) }

// bind decodes the JSON body into a T.
func bind[T any](c *fiber.Ctx) (T, error) {
	var v T
	if err := c.BodyParser(&v); err != nil {
		return v, validate.FieldErrors{"body": "is not valid JSON"}
	}
	return v, nil
}

func param(c *fiber.Ctx, name string) (string, error) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		return "", validate.FieldErrors{name: "is invalid"}
	}
	return id, nil
}

// reply writes v, or the classified error for action.
func reply(c *fiber.Ctx, action string, status int, v any, err error) error {
	if err != nil {
		return jsonError(c, action, err)
	}
	if v == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(status).JSON(v)
}

// GET /admin/api/me returns the signed-in admin and the CSRF token for writes.
func (h *AdminHandler) Me(c *fiber.Ctx) error {
	tok, _ := c.Locals("csrf").(string)
	return c.JSON(fiber.Map{"user": c.Locals("user"), "csrfToken": tok, "demo": h.Demo})
}

// GET /admin/api/dashboard
func (h *AdminHandler) DashboardSummary(c *fiber.Ctx) error {
	d, err := h.Dashboard.Summary(c.UserContext(), h.token(c))
	return reply(c, "admin.dashboard", fiber.StatusOK, d, err)
}

// GET /admin/api/search?q=
func (h *AdminHandler) Search(c *fiber.Ctx) error {
	res, err := h.Dashboard.Search(c.UserContext(), h.token(c), c.Query("q"))
	return reply(c, "admin.search", fiber.StatusOK, res, err)
}

// RFQs

func (h *AdminHandler) ListRFQs(c *fiber.Ctx) error {
	var q domain.RFQQuery
	if err := c.QueryParser(&q); err != nil {
		return jsonError(c, "admin.rfq.list", validate.FieldErrors{"query": "is invalid"})
	}
	if q.Status != "" && !domain.RFQStatus(q.Status).Valid() {
		return jsonError(c, "admin.rfq.list", validate.FieldErrors{"status": "is invalid"})
	}
	q.Page, q.Limit = pageBounds(q.Page, q.Limit)
	page, err := h.Admin.ListRFQs(c.UserContext(), h.token(c), q)
	return reply(c, "admin.rfq.list", fiber.StatusOK, page, err)
}

func (h *AdminHandler) GetRFQ(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.rfq.get", err)
	}
	r, err := h.Admin.RFQ(c.UserContext(), h.token(c), id)
	return reply(c, "admin.rfq.get", fiber.StatusOK, r, err)
}

func (h *AdminHandler) UpdateRFQStatus(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.rfq.status", err)
	}
	body, err := bind[struct {
		Status domain.RFQStatus `json:"status"`
	}](c)
	if err != nil {
		return jsonError(c, "admin.rfq.status", err)
	}
	r, err := h.Admin.UpdateRFQStatus(c.UserContext(), h.token(c), id, body.Status)
	return reply(c, "admin.rfq.status", fiber.StatusOK, r, err)
}

// Suppliers

func (h *AdminHandler) ListSuppliers(c *fiber.Ctx) error {
	var q domain.SupplierQuery
	_ = c.QueryParser(&q)
	q.Page, q.Limit = pageBounds(q.Page, q.Limit)
	if q.Search != "" {
		s, ok := validate.Q(q.Search)
		if !ok {
			return jsonError(c, "admin.supplier.list", validate.FieldErrors{"search": "use letters and numbers only"})
		}
		q.Search = s
	}
	page, err := h.Catalog.ListSuppliers(c.UserContext(), q)
	return reply(c, "admin.supplier.list", fiber.StatusOK, page, err)
}

func (h *AdminHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.supplier.get", err)
	}
	s, err := h.Catalog.Supplier(c.UserContext(), id)
	return reply(c, "admin.supplier.get", fiber.StatusOK, s, err)
}

func (h *AdminHandler) CreateSupplier(c *fiber.Ctx) error {
	in, err := bind[domain.SupplierInput](c)
	if err != nil {
		return jsonError(c, "admin.supplier.create", err)
	}
	s, err := h.Admin.CreateSupplier(c.UserContext(), h.token(c), in)
	return reply(c, "admin.supplier.create", fiber.StatusCreated, s, err)
}

func (h *AdminHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.supplier.update", err)
	}
	in, err := bind[domain.SupplierInput](c)
	if err != nil {
		return jsonError(c, "admin.supplier.update", err)
	}
	s, err := h.Admin.UpdateSupplier(c.UserContext(), h.token(c), id, in)
	return reply(c, "admin.supplier.update", fiber.StatusOK, s, err)
}

type industryIDs struct {
	IndustryIDs []string `json:"industryIds"`
}

func (h *AdminHandler) UpdateSupplierIndustries(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.supplier.industries", err)
	}
	in, err := bind[industryIDs](c)
	if err != nil {
		return jsonError(c, "admin.supplier.industries", err)
	}
	s, err := h.Admin.UpdateSupplierIndustries(c.UserContext(), h.token(c), id, in.IndustryIDs)
	return reply(c, "admin.supplier.industries", fiber.StatusOK, s, err)
}

func (h *AdminHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.supplier.delete", err)
	}
	return reply(c, "admin.supplier.delete", 0, nil, h.Admin.DeleteSupplier(c.UserContext(), h.token(c), id))
}

// POST /admin/api/suppliers/bulk takes {"suppliers": [...]}.
func (h *AdminHandler) BulkCreateSuppliers(c *fiber.Ctx) error {
	in, err := bind[struct {
		Suppliers []domain.SupplierInput `json:"suppliers"`
	}](c)
	if err != nil {
		return jsonError(c, "admin.supplier.bulk", err)
	}
	out, err := h.Admin.BulkCreateSuppliers(c.UserContext(), h.token(c), in.Suppliers)
	return reply(c, "admin.supplier.bulk", fiber.StatusCreated, out, err)
}

// POST /admin/api/suppliers/bulk-upload takes a multipart "file".
func (h *AdminHandler) BulkUploadSuppliers(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, "admin.supplier.upload", validate.FieldErrors{"file": "is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return jsonError(c, "admin.supplier.upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return jsonError(c, "admin.supplier.upload", err)
	}
	out, err := h.Admin.BulkUploadSuppliers(c.UserContext(), h.token(c), domain.Attachment{Name: fh.Filename, Data: data})
	return reply(c, "admin.supplier.upload", fiber.StatusCreated, out, err)
}

// Products

func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	q, err := productQuery(c)
	if err != nil {
		return jsonError(c, "admin.product.list", err)
	}
	page, err := h.Catalog.ListProducts(c.UserContext(), q)
	return reply(c, "admin.product.list", fiber.StatusOK, page, err)
}

// GET /admin/api/products/:slug
func (h *AdminHandler) GetProduct(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return jsonError(c, "admin.product.get", validate.FieldErrors{"slug": "is invalid"})
	}
	p, err := h.Catalog.Product(c.UserContext(), slug)
	return reply(c, "admin.product.get", fiber.StatusOK, p, err)
}

func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	in, err := bind[domain.ProductInput](c)
	if err != nil {
		return jsonError(c, "admin.product.create", err)
	}
	p, err := h.Admin.CreateProduct(c.UserContext(), h.token(c), in)
	return reply(c, "admin.product.create", fiber.StatusCreated, p, err)
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.product.update", err)
	}
	in, err := bind[domain.ProductInput](c)
	if err != nil {
		return jsonError(c, "admin.product.update", err)
	}
	p, err := h.Admin.UpdateProduct(c.UserContext(), h.token(c), id, in)
	return reply(c, "admin.product.update", fiber.StatusOK, p, err)
}

// productPart handles the PUT sub-resources of a product that take a
// single JSON list field.
func productPart[T any](h *AdminHandler, action, field string, fn func(*services.AdminService, *fiber.Ctx, string, []T) (domain.Product, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := param(c, "id")
		if err != nil {
			return jsonError(c, action, err)
		}
		var body map[string][]T
		if err := c.BodyParser(&body); err != nil {
			return jsonError(c, action, validate.FieldErrors{"body": "is not valid JSON"})
		}
		p, err := fn(h.Admin, c, id, body[field])
		return reply(c, action, fiber.StatusOK, p, err)
	}
}

func (h *AdminHandler) UpdatePrices() fiber.Handler {
	return productPart(h, "admin.product.prices", "prices", func(a *services.AdminService, c *fiber.Ctx, id string, v []domain.Price) (domain.Product, error) {
		return a.UpdatePrices(c.UserContext(), h.token(c), id, v)
	})
}

func (h *AdminHandler) UpdateProductIndustries() fiber.Handler {
	return productPart(h, "admin.product.industries", "industryIds", func(a *services.AdminService, c *fiber.Ctx, id string, v []string) (domain.Product, error) {
		return a.UpdateProductIndustries(c.UserContext(), h.token(c), id, v)
	})
}

func (h *AdminHandler) UpdateFeatures() fiber.Handler {
	return productPart(h, "admin.product.features", "features", func(a *services.AdminService, c *fiber.Ctx, id string, v []domain.Feature) (domain.Product, error) {
		return a.UpdateFeatures(c.UserContext(), h.token(c), id, v)
	})
}

func (h *AdminHandler) UpdateSpecifications() fiber.Handler {
	return productPart(h, "admin.product.specifications", "specifications", func(a *services.AdminService, c *fiber.Ctx, id string, v []domain.Specification) (domain.Product, error) {
		return a.UpdateSpecifications(c.UserContext(), h.token(c), id, v)
	})
}

func (h *AdminHandler) UpdateFAQs() fiber.Handler {
	return productPart(h, "admin.product.faqs", "faqs", func(a *services.AdminService, c *fiber.Ctx, id string, v []domain.FAQ) (domain.Product, error) {
		return a.UpdateFAQs(c.UserContext(), h.token(c), id, v)
	})
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.product.delete", err)
	}
	return reply(c, "admin.product.delete", 0, nil, h.Admin.DeleteProduct(c.UserContext(), h.token(c), id))
}

func (h *AdminHandler) ListFeatures(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.feature.list", err)
	}
	fs, err := h.Catalog.Features(c.UserContext(), id)
	return reply(c, "admin.feature.list", fiber.StatusOK, fiber.Map{"data": fs}, err)
}

func (h *AdminHandler) AddFeature(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.feature.add", err)
	}
	f, err := bind[domain.Feature](c)
	if err != nil {
		return jsonError(c, "admin.feature.add", err)
	}
	out, err := h.Admin.AddFeature(c.UserContext(), h.token(c), id, f)
	return reply(c, "admin.feature.add", fiber.StatusCreated, out, err)
}

func (h *AdminHandler) DeleteFeature(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.feature.delete", err)
	}
	fid, err := param(c, "featureId")
	if err != nil {
		return jsonError(c, "admin.feature.delete", err)
	}
	return reply(c, "admin.feature.delete", 0, nil, h.Admin.DeleteFeature(c.UserContext(), h.token(c), id, fid))
}

// Categories

func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	var (
		cats []domain.Category
		err  error
	)
	if c.Query("tree") == "true" {
		cats, err = h.Catalog.CategoryTree(c.UserContext())
	} else {
		cats, err = h.Catalog.Categories(c.UserContext())
	}
	return reply(c, "admin.category.list", fiber.StatusOK, fiber.Map{"data": cats}, err)
}

func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	in, err := bind[domain.CategoryInput](c)
	if err != nil {
		return jsonError(c, "admin.category.create", err)
	}
	cat, err := h.Admin.CreateCategory(c.UserContext(), h.token(c), in)
	return reply(c, "admin.category.create", fiber.StatusCreated, cat, err)
}

func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.category.update", err)
	}
	in, err := bind[domain.CategoryInput](c)
	if err != nil {
		return jsonError(c, "admin.category.update", err)
	}
	cat, err := h.Admin.UpdateCategory(c.UserContext(), h.token(c), id, in)
	return reply(c, "admin.category.update", fiber.StatusOK, cat, err)
}

func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.category.delete", err)
	}
	return reply(c, "admin.category.delete", 0, nil, h.Admin.DeleteCategory(c.UserContext(), h.token(c), id))
}

// Industries

func (h *AdminHandler) ListIndustries(c *fiber.Ctx) error {
	inds, err := h.Catalog.Industries(c.UserContext())
	return reply(c, "admin.industry.list", fiber.StatusOK, fiber.Map{"data": inds}, err)
}

func (h *AdminHandler) CreateIndustry(c *fiber.Ctx) error {
	in, err := bind[domain.IndustryInput](c)
	if err != nil {
		return jsonError(c, "admin.industry.create", err)
	}
	ind, err := h.Admin.CreateIndustry(c.UserContext(), h.token(c), in)
	return reply(c, "admin.industry.create", fiber.StatusCreated, ind, err)
}

func (h *AdminHandler) UpdateIndustry(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.industry.update", err)
	}
	in, err := bind[domain.IndustryInput](c)
	if err != nil {
		return jsonError(c, "admin.industry.update", err)
	}
	ind, err := h.Admin.UpdateIndustry(c.UserContext(), h.token(c), id, in)
	return reply(c, "admin.industry.update", fiber.StatusOK, ind, err)
}

func (h *AdminHandler) DeleteIndustry(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return jsonError(c, "admin.industry.delete", err)
	}
	return reply(c, "admin.industry.delete", 0, nil, h.Admin.DeleteIndustry(c.UserContext(), h.token(c), id))
}

// logWrites audits every successful admin mutation at the HTTP layer.
func logWrites(c *fiber.Ctx) error {
	err := c.Next()
	if c.Method() != fiber.MethodGet && err == nil && c.Response().StatusCode() < 400 {
		applog.Audit(c, "admin.write", map[string]any{"status": c.Response().StatusCode()})
	}
	return err
}
