package apiclient

import (
	"context"
	"net/http"

	"souqnest/internal/domain"
	"souqnest/internal/normalize"
)

func (c *Client) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	kv := append([]string{
		"search", q.Search,
		"categoryId", q.CategoryID,
		"industryId", q.IndustryID,
		"currency", q.Currency,
		"minPrice", q.MinPrice,
		"maxPrice", q.MaxPrice,
		"sort", q.Sort,
	}, pageParams(q.Page, q.Limit)...)
	body, err := c.get(ctx, "/products", Params(kv...))
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return normalize.DecodePage[domain.Product](body)
}

// Product fetches one product by slug. The backend also accepts ids here.
func (c *Client) Product(ctx context.Context, slug string) (domain.Product, error) {
	body, err := c.get(ctx, "/products/"+escape(slug), nil)
	if err != nil {
		return domain.Product{}, err
	}
	return normalize.DecodeObject[domain.Product](body)
}

func (c *Client) Features(ctx context.Context, productID string) ([]domain.Feature, error) {
	body, err := c.get(ctx, "/products/"+escape(productID)+"/features", nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeList[domain.Feature](body)
}

func (c *Client) ListSuppliers(ctx context.Context, q domain.SupplierQuery) (domain.Page[domain.Supplier], error) {
	kv := append([]string{
		"search", q.Search,
		"supplierType", q.SupplierType,
		"industryId", q.IndustryID,
	}, pageParams(q.Page, q.Limit)...)
	body, err := c.get(ctx, "/suppliers", Params(kv...))
	if err != nil {
		return domain.Page[domain.Supplier]{}, err
	}
	return normalize.DecodePage[domain.Supplier](body)
}

func (c *Client) Supplier(ctx context.Context, id string) (domain.Supplier, error) {
	body, err := c.get(ctx, "/suppliers/"+escape(id), nil)
	if err != nil {
		return domain.Supplier{}, err
	}
	return normalize.DecodeObject[domain.Supplier](body)
}

func (c *Client) SupplierIndustries(ctx context.Context, id string) ([]domain.Industry, error) {
	body, err := c.get(ctx, "/suppliers/"+escape(id)+"/industries", nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeList[domain.Industry](body)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.get(ctx, "/categories", nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeList[domain.Category](body)
}

func (c *Client) CategoryTree(ctx context.Context) ([]domain.Category, error) {
	body, err := c.get(ctx, "/categories/tree", nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeList[domain.Category](body)
}

func (c *Client) Industries(ctx context.Context) ([]domain.Industry, error) {
	body, err := c.get(ctx, "/industries", nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeList[domain.Industry](body)
}

func (c *Client) ListRFQs(ctx context.Context, q domain.RFQQuery) (domain.Page[domain.RFQ], error) {
	kv := append([]string{"status", q.Status}, pageParams(q.Page, q.Limit)...)
	body, err := c.get(ctx, "/rfq", Params(kv...))
	if err != nil {
		return domain.Page[domain.RFQ]{}, err
	}
	return normalize.DecodePage[domain.RFQ](body)
}

func (c *Client) RFQ(ctx context.Context, id string) (domain.RFQ, error) {
	body, err := c.get(ctx, "/rfq/"+escape(id), nil)
	if err != nil {
		return domain.RFQ{}, err
	}
	return normalize.DecodeObject[domain.RFQ](body)
}

// CreateRFQ posts a quote request. Writes are never retried.
func (c *Client) CreateRFQ(ctx context.Context, req domain.RFQRequest) (domain.RFQ, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/rfq", req)
	if err != nil {
		return domain.RFQ{}, err
	}
	return normalize.DecodeObject[domain.RFQ](body)
}

func (c *Client) UpdateRFQStatus(ctx context.Context, id string, status domain.RFQStatus) (domain.RFQ, error) {
	body, err := c.sendJSON(ctx, http.MethodPatch, "/rfq/"+escape(id)+"/status", map[string]domain.RFQStatus{"status": status})
	if err != nil {
		return domain.RFQ{}, err
	}
	return normalize.DecodeObject[domain.RFQ](body)
}

// Login exchanges credentials for a token and user.
func (c *Client) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.LoginResult{}, err
	}
	return normalize.DecodeObject[domain.LoginResult](body)
}
