package services

import (
	"context"

	"souqnest/internal/domain"
)

// Source is the read surface shared by the REST client and the demo
// catalog. CreateRFQ is the one public write.
type Source interface {
	ListProducts(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error)
	Product(ctx context.Context, slug string) (domain.Product, error)
	Features(ctx context.Context, productID string) ([]domain.Feature, error)
	ListSuppliers(ctx context.Context, q domain.SupplierQuery) (domain.Page[domain.Supplier], error)
	Supplier(ctx context.Context, id string) (domain.Supplier, error)
	SupplierIndustries(ctx context.Context, id string) ([]domain.Industry, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryTree(ctx context.Context) ([]domain.Category, error)
	Industries(ctx context.Context) ([]domain.Industry, error)

	CreateRFQ(ctx context.Context, req domain.RFQRequest) (domain.RFQ, error)
	ListRFQs(ctx context.Context, q domain.RFQQuery) (domain.Page[domain.RFQ], error)
	RFQ(ctx context.Context, id string) (domain.RFQ, error)
	UpdateRFQStatus(ctx context.Context, id string, status domain.RFQStatus) (domain.RFQ, error)

	Metrics(ctx context.Context) (any, error)
	ProductPopularity(ctx context.Context) (any, error)
	RFQAnalytics(ctx context.Context) (any, error)
	Search(ctx context.Context, term string) (any, error)
}

// Backend adds the admin writes only a real backend accepts.
type Backend interface {
	Source

	CreateSupplier(ctx context.Context, in domain.SupplierInput) (domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, in domain.SupplierInput) (domain.Supplier, error)
	UpdateSupplierIndustries(ctx context.Context, id string, ids []string) (domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
	BulkCreateSuppliers(ctx context.Context, in []domain.SupplierInput) (map[string]any, error)
	BulkUploadSuppliers(ctx context.Context, file domain.Attachment) (map[string]any, error)

	CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error)
	UpdatePrices(ctx context.Context, id string, prices []domain.Price) (domain.Product, error)
	UpdateProductIndustries(ctx context.Context, id string, ids []string) (domain.Product, error)
	UpdateFeatures(ctx context.Context, id string, features []domain.Feature) (domain.Product, error)
	UpdateSpecifications(ctx context.Context, id string, specs []domain.Specification) (domain.Product, error)
	UpdateFAQs(ctx context.Context, id string, faqs []domain.FAQ) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddFeature(ctx context.Context, productID string, f domain.Feature) (domain.Feature, error)
	DeleteFeature(ctx context.Context, productID, featureID string) error

	CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in domain.CategoryInput) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateIndustry(ctx context.Context, in domain.IndustryInput) (domain.Industry, error)
	UpdateIndustry(ctx context.Context, id string, in domain.IndustryInput) (domain.Industry, error)
	DeleteIndustry(ctx context.Context, id string) error

	SubmitEnquiry(ctx context.Context, e domain.Enquiry, files []domain.Attachment) error
}
