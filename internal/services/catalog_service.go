package services

import (
	"context"

	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/querycache"
)

type CatalogService struct {
	Src   Source
	Cache *querycache.Cache
}

func NewCatalogService(src Source, cache *querycache.Cache) *CatalogService {
	return &CatalogService{Src: src, Cache: cache}
}

func (s *CatalogService) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"products", "list", q}, func(ctx context.Context) (domain.Page[domain.Product], error) {
		return s.Src.ListProducts(ctx, q)
	})
}

func (s *CatalogService) Product(ctx context.Context, slug string) (domain.Product, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"products", "detail", slug}, func(ctx context.Context) (domain.Product, error) {
		return s.Src.Product(ctx, slug)
	})
}

func (s *CatalogService) Features(ctx context.Context, productID string) ([]domain.Feature, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"products", "features", productID}, func(ctx context.Context) ([]domain.Feature, error) {
		return s.Src.Features(ctx, productID)
	})
}

func (s *CatalogService) ListSuppliers(ctx context.Context, q domain.SupplierQuery) (domain.Page[domain.Supplier], error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"suppliers", "list", q}, func(ctx context.Context) (domain.Page[domain.Supplier], error) {
		return s.Src.ListSuppliers(ctx, q)
	})
}

func (s *CatalogService) Supplier(ctx context.Context, id string) (domain.Supplier, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"suppliers", "detail", id}, func(ctx context.Context) (domain.Supplier, error) {
		return s.Src.Supplier(ctx, id)
	})
}

func (s *CatalogService) SupplierIndustries(ctx context.Context, id string) ([]domain.Industry, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"suppliers", "detail", id, "industries"}, func(ctx context.Context) ([]domain.Industry, error) {
		return s.Src.SupplierIndustries(ctx, id)
	})
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"categories", "list"}, s.Src.Categories)
}

// CategoryTree returns root categories with one level of children. Deeper
// levels are lifted onto their root and logged.
func (s *CatalogService) CategoryTree(ctx context.Context) ([]domain.Category, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"categories", "tree"}, func(ctx context.Context) ([]domain.Category, error) {
		tree, err := s.Src.CategoryTree(ctx)
		if err != nil {
			return nil, err
		}
		return FlattenTree(tree), nil
	})
}

func (s *CatalogService) Industries(ctx context.Context) ([]domain.Industry, error) {
	return querycache.Get(ctx, s.Cache, querycache.Key{"industries", "list"}, s.Src.Industries)
}

// FlattenTree keeps roots and lifts every descendant below the first level
// into its root's direct children.
func FlattenTree(roots []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(roots))
	for _, r := range roots {
		var subs []domain.Category
		var walk func(cs []domain.Category, depth int)
		walk = func(cs []domain.Category, depth int) {
			for _, c := range cs {
				children := c.Subcategories
				c.Subcategories = nil
				subs = append(subs, c)
				if len(children) > 0 {
					applog.Warn(nil, "category.tree.flatten", nil, map[string]any{"category": c.ID, "root": r.ID, "depth": depth + 1})
					walk(children, depth+1)
				}
			}
		}
		walk(r.Subcategories, 1)
		r.Subcategories = subs
		out = append(out, r)
	}
	return out
}
