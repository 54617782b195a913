package services

import (
	"context"
	"fmt"
	"strings"

	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/querycache"
	"souqnest/internal/validate"
)

// AdminService forwards admin writes to the backend with the caller's token
// and drops the cached reads each write makes stale.
type AdminService struct {
	Reads Source
	// Backend returns a client authorised with token. Nil in demo mode.
	Backend func(token string) Backend
	Cache   *querycache.Cache
}

func (s *AdminService) backend(token string) (Backend, error) {
	if s.Backend == nil {
		return nil, domain.ErrBackendRequired
	}
	return s.Backend(token), nil
}

func (s *AdminService) source(token string) Source { return pick(s.Reads, s.Backend, token) }

// pick prefers the authorised backend and falls back to the shared reads.
func pick(reads Source, backend func(string) Backend, token string) Source {
	if backend == nil {
		return reads
	}
	return backend(token)
}

func (s *AdminService) invalidate(prefixes ...querycache.Key) {
	for _, p := range prefixes {
		s.Cache.Invalidate(p...)
	}
}

func audit(action string, fields map[string]any) { applog.Audit(nil, action, fields) }

// RFQs

func (s *AdminService) ListRFQs(ctx context.Context, token string, q domain.RFQQuery) (domain.Page[domain.RFQ], error) {
	src := s.source(token)
	return querycache.Get(ctx, s.Cache, querycache.Key{"rfqs", "list", q}, func(ctx context.Context) (domain.Page[domain.RFQ], error) {
		return src.ListRFQs(ctx, q)
	})
}

func (s *AdminService) RFQ(ctx context.Context, token, id string) (domain.RFQ, error) {
	src := s.source(token)
	return querycache.Get(ctx, s.Cache, querycache.Key{"rfqs", "detail", id}, func(ctx context.Context) (domain.RFQ, error) {
		return src.RFQ(ctx, id)
	})
}

// UpdateRFQStatus is the only RFQ mutation. It also works in demo mode,
// where RFQs live in memory.
func (s *AdminService) UpdateRFQStatus(ctx context.Context, token, id string, status domain.RFQStatus) (domain.RFQ, error) {
	if !status.Valid() {
		return domain.RFQ{}, validate.FieldErrors{"status": "must be one of PENDING RESPONDED"}
	}
	r, err := s.source(token).UpdateRFQStatus(ctx, id, status)
	if err != nil {
		return domain.RFQ{}, err
	}
	s.invalidate(querycache.Key{"rfqs"}, querycache.Key{"dashboard"})
	audit("admin.rfq.status", map[string]any{"rfq_id": id, "status": status})
	return r, nil
}

// Suppliers

func (s *AdminService) CreateSupplier(ctx context.Context, token string, in domain.SupplierInput) (domain.Supplier, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Supplier{}, err
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Supplier{}, err
	}
	out, err := b.CreateSupplier(ctx, in)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.invalidate(querycache.Key{"suppliers", "list"}, querycache.Key{"dashboard"})
	audit("admin.supplier.create", map[string]any{"supplier_id": out.ID})
	return out, nil
}

func (s *AdminService) UpdateSupplier(ctx context.Context, token, id string, in domain.SupplierInput) (domain.Supplier, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Supplier{}, err
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Supplier{}, err
	}
	out, err := b.UpdateSupplier(ctx, id, in)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.invalidate(querycache.Key{"suppliers", "list"}, querycache.Key{"suppliers", "detail", id})
	audit("admin.supplier.update", map[string]any{"supplier_id": id})
	return out, nil
}

func (s *AdminService) UpdateSupplierIndustries(ctx context.Context, token, id string, industryIDs []string) (domain.Supplier, error) {
	b, err := s.backend(token)
	if err != nil {
		return domain.Supplier{}, err
	}
	out, err := b.UpdateSupplierIndustries(ctx, id, industryIDs)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.invalidate(querycache.Key{"suppliers", "list"}, querycache.Key{"suppliers", "detail", id})
	audit("admin.supplier.industries", map[string]any{"supplier_id": id, "industries": len(industryIDs)})
	return out, nil
}

func (s *AdminService) DeleteSupplier(ctx context.Context, token, id string) error {
	b, err := s.backend(token)
	if err != nil {
		return err
	}
	if err := b.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.invalidate(querycache.Key{"suppliers"}, querycache.Key{"dashboard"})
	audit("admin.supplier.delete", map[string]any{"supplier_id": id})
	return nil
}

func (s *AdminService) BulkCreateSuppliers(ctx context.Context, token string, in []domain.SupplierInput) (map[string]any, error) {
	if len(in) == 0 {
		return nil, validate.FieldErrors{"suppliers": "is required"}
	}
	for i, sup := range in {
		if err := validate.Struct(sup); err != nil {
			return nil, fmt.Errorf("supplier %d: %w", i+1, err)
		}
	}
	b, err := s.backend(token)
	if err != nil {
		return nil, err
	}
	out, err := b.BulkCreateSuppliers(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(querycache.Key{"suppliers", "list"}, querycache.Key{"dashboard"})
	audit("admin.supplier.bulk", map[string]any{"count": len(in)})
	return out, nil
}

func (s *AdminService) BulkUploadSuppliers(ctx context.Context, token string, file domain.Attachment) (map[string]any, error) {
	if len(file.Data) == 0 {
		return nil, validate.FieldErrors{"file": "is required"}
	}
	b, err := s.backend(token)
	if err != nil {
		return nil, err
	}
	out, err := b.BulkUploadSuppliers(ctx, file)
	if err != nil {
		return nil, err
	}
	s.invalidate(querycache.Key{"suppliers", "list"}, querycache.Key{"dashboard"})
	audit("admin.supplier.upload", map[string]any{"file": file.Name, "bytes": len(file.Data)})
	return out, nil
}

// Products

func (s *AdminService) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Product{}, err
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Product{}, err
	}
	out, err := b.CreateProduct(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(querycache.Key{"products", "list"}, querycache.Key{"dashboard"})
	audit("admin.product.create", map[string]any{"product_id": out.ID})
	return out, nil
}

// productChanged drops product lists and every cached detail, since details
// are keyed by slug and the id alone does not name them.
func (s *AdminService) productChanged(id string) {
	s.invalidate(
		querycache.Key{"products", "list"},
		querycache.Key{"products", "detail"},
		querycache.Key{"products", "features", id},
	)
}

func (s *AdminService) UpdateProduct(ctx context.Context, token, id string, in domain.ProductInput) (domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Product{}, err
	}
	return s.productWrite(ctx, token, id, "admin.product.update", func(b Backend) (domain.Product, error) {
		return b.UpdateProduct(ctx, id, in)
	})
}

func (s *AdminService) UpdatePrices(ctx context.Context, token, id string, prices []domain.Price) (domain.Product, error) {
	for i, p := range prices {
		if p.Currency == "" || p.Amount.IsNegative() {
			return domain.Product{}, validate.FieldErrors{fmt.Sprintf("prices[%d]", i): "needs a currency and a non-negative amount"}
		}
	}
	return s.productWrite(ctx, token, id, "admin.product.prices", func(b Backend) (domain.Product, error) {
		return b.UpdatePrices(ctx, id, prices)
	})
}

func (s *AdminService) UpdateProductIndustries(ctx context.Context, token, id string, industryIDs []string) (domain.Product, error) {
	return s.productWrite(ctx, token, id, "admin.product.industries", func(b Backend) (domain.Product, error) {
		return b.UpdateProductIndustries(ctx, id, industryIDs)
	})
}

func (s *AdminService) UpdateFeatures(ctx context.Context, token, id string, features []domain.Feature) (domain.Product, error) {
	return s.productWrite(ctx, token, id, "admin.product.features", func(b Backend) (domain.Product, error) {
		return b.UpdateFeatures(ctx, id, features)
	})
}

func (s *AdminService) UpdateSpecifications(ctx context.Context, token, id string, specs []domain.Specification) (domain.Product, error) {
	return s.productWrite(ctx, token, id, "admin.product.specifications", func(b Backend) (domain.Product, error) {
		return b.UpdateSpecifications(ctx, id, specs)
	})
}

func (s *AdminService) UpdateFAQs(ctx context.Context, token, id string, faqs []domain.FAQ) (domain.Product, error) {
	return s.productWrite(ctx, token, id, "admin.product.faqs", func(b Backend) (domain.Product, error) {
		return b.UpdateFAQs(ctx, id, faqs)
	})
}

func (s *AdminService) productWrite(ctx context.Context, token, id, action string, fn func(Backend) (domain.Product, error)) (domain.Product, error) {
	b, err := s.backend(token)
	if err != nil {
		return domain.Product{}, err
	}
	out, err := fn(b)
	if err != nil {
		return domain.Product{}, err
	}
	s.productChanged(id)
	audit(action, map[string]any{"product_id": id})
	return out, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, token, id string) error {
	b, err := s.backend(token)
	if err != nil {
		return err
	}
	if err := b.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.productChanged(id)
	s.invalidate(querycache.Key{"dashboard"})
	audit("admin.product.delete", map[string]any{"product_id": id})
	return nil
}

func (s *AdminService) AddFeature(ctx context.Context, token, productID string, f domain.Feature) (domain.Feature, error) {
	if strings.TrimSpace(f.Title) == "" {
		return domain.Feature{}, validate.FieldErrors{"title": "is required"}
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Feature{}, err
	}
	out, err := b.AddFeature(ctx, productID, f)
	if err != nil {
		return domain.Feature{}, err
	}
	s.productChanged(productID)
	audit("admin.feature.add", map[string]any{"product_id": productID, "feature_id": out.ID})
	return out, nil
}

func (s *AdminService) DeleteFeature(ctx context.Context, token, productID, featureID string) error {
	b, err := s.backend(token)
	if err != nil {
		return err
	}
	if err := b.DeleteFeature(ctx, productID, featureID); err != nil {
		return err
	}
	s.productChanged(productID)
	audit("admin.feature.delete", map[string]any{"product_id": productID, "feature_id": featureID})
	return nil
}

// Categories

func (s *AdminService) CreateCategory(ctx context.Context, token string, in domain.CategoryInput) (domain.Category, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Category{}, err
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Category{}, err
	}
	out, err := b.CreateCategory(ctx, in)
	if err != nil {
		return domain.Category{}, err
	}
	s.invalidate(querycache.Key{"categories"}, querycache.Key{"dashboard"})
	audit("admin.category.create", map[string]any{"category_id": out.ID})
	return out, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, token, id string, in domain.CategoryInput) (domain.Category, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Category{}, err
	}
	if in.ParentID != nil && *in.ParentID == id {
		return domain.Category{}, validate.FieldErrors{"parentId": "cannot be the category itself"}
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Category{}, err
	}
	out, err := b.UpdateCategory(ctx, id, in)
	if err != nil {
		return domain.Category{}, err
	}
	s.invalidate(querycache.Key{"categories"})
	audit("admin.category.update", map[string]any{"category_id": id})
	return out, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, token, id string) error {
	b, err := s.backend(token)
	if err != nil {
		return err
	}
	if err := b.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(querycache.Key{"categories"}, querycache.Key{"dashboard"})
	audit("admin.category.delete", map[string]any{"category_id": id})
	return nil
}

// Industries

func (s *AdminService) CreateIndustry(ctx context.Context, token string, in domain.IndustryInput) (domain.Industry, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Industry{}, err
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Industry{}, err
	}
	out, err := b.CreateIndustry(ctx, in)
	if err != nil {
		return domain.Industry{}, err
	}
	s.invalidate(querycache.Key{"industries"}, querycache.Key{"dashboard"})
	audit("admin.industry.create", map[string]any{"industry_id": out.ID})
	return out, nil
}

func (s *AdminService) UpdateIndustry(ctx context.Context, token, id string, in domain.IndustryInput) (domain.Industry, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Industry{}, err
	}
	b, err := s.backend(token)
	if err != nil {
		return domain.Industry{}, err
	}
	out, err := b.UpdateIndustry(ctx, id, in)
	if err != nil {
		return domain.Industry{}, err
	}
	s.invalidate(querycache.Key{"industries"})
	audit("admin.industry.update", map[string]any{"industry_id": id})
	return out, nil
}

func (s *AdminService) DeleteIndustry(ctx context.Context, token, id string) error {
	b, err := s.backend(token)
	if err != nil {
		return err
	}
	if err := b.DeleteIndustry(ctx, id); err != nil {
		return err
	}
	s.invalidate(querycache.Key{"industries"}, querycache.Key{"dashboard"})
	audit("admin.industry.delete", map[string]any{"industry_id": id})
	return nil
}
