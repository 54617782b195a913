package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"souqnest/internal/domain"
	"souqnest/internal/normalize"
)

type industryIDs struct {
	IndustryIDs []string `json:"industryIds"`
}

func (c *Client) CreateSupplier(ctx context.Context, in domain.SupplierInput) (domain.Supplier, error) {
	return sendObject[domain.Supplier](ctx, c, http.MethodPost, "/suppliers", in)
}

func (c *Client) UpdateSupplier(ctx context.Context, id string, in domain.SupplierInput) (domain.Supplier, error) {
	return sendObject[domain.Supplier](ctx, c, http.MethodPatch, "/suppliers/"+escape(id), in)
}

func (c *Client) UpdateSupplierIndustries(ctx context.Context, id string, ids []string) (domain.Supplier, error) {
	return sendObject[domain.Supplier](ctx, c, http.MethodPatch, "/suppliers/"+escape(id)+"/industries", industryIDs{ids})
}

func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, "/suppliers/"+escape(id), nil)
	return err
}

// BulkCreateSuppliers returns the backend's summary object as-is.
func (c *Client) BulkCreateSuppliers(ctx context.Context, in []domain.SupplierInput) (map[string]any, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/suppliers/bulk", in)
	if err != nil {
		return nil, err
	}
	return summary(body)
}

// BulkUploadSuppliers sends a CSV or spreadsheet as multipart field "file".
func (c *Client) BulkUploadSuppliers(ctx context.Context, file domain.Attachment) (map[string]any, error) {
	body, err := c.sendMultipart(ctx, "/suppliers/bulk-upload", nil, "file", []domain.Attachment{file})
	if err != nil {
		return nil, err
	}
	return summary(body)
}

func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPost, "/products", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPatch, "/products/"+escape(id), in)
}

func (c *Client) UpdatePrices(ctx context.Context, id string, prices []domain.Price) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPatch, "/products/"+escape(id)+"/prices", map[string]any{"prices": prices})
}

func (c *Client) UpdateProductIndustries(ctx context.Context, id string, ids []string) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPatch, "/products/"+escape(id)+"/industries", industryIDs{ids})
}

func (c *Client) UpdateFeatures(ctx context.Context, id string, features []domain.Feature) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPatch, "/products/"+escape(id)+"/features", map[string]any{"features": features})
}

func (c *Client) UpdateSpecifications(ctx context.Context, id string, specs []domain.Specification) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPatch, "/products/"+escape(id)+"/specifications", map[string]any{"specifications": specs})
}

func (c *Client) UpdateFAQs(ctx context.Context, id string, faqs []domain.FAQ) (domain.Product, error) {
	return sendObject[domain.Product](ctx, c, http.MethodPatch, "/products/"+escape(id)+"/faqs", map[string]any{"faqs": faqs})
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, "/products/"+escape(id), nil)
	return err
}

func (c *Client) AddFeature(ctx context.Context, productID string, f domain.Feature) (domain.Feature, error) {
	return sendObject[domain.Feature](ctx, c, http.MethodPost, "/products/"+escape(productID)+"/features", f)
}

func (c *Client) DeleteFeature(ctx context.Context, productID, featureID string) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, "/products/"+escape(productID)+"/features/"+escape(featureID), nil)
	return err
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	return sendObject[domain.Category](ctx, c, http.MethodPost, "/categories", in)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in domain.CategoryInput) (domain.Category, error) {
	return sendObject[domain.Category](ctx, c, http.MethodPatch, "/categories/"+escape(id), in)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, "/categories/"+escape(id), nil)
	return err
}

func (c *Client) CreateIndustry(ctx context.Context, in domain.IndustryInput) (domain.Industry, error) {
	return sendObject[domain.Industry](ctx, c, http.MethodPost, "/industries", in)
}

func (c *Client) UpdateIndustry(ctx context.Context, id string, in domain.IndustryInput) (domain.Industry, error) {
	return sendObject[domain.Industry](ctx, c, http.MethodPatch, "/industries/"+escape(id), in)
}

func (c *Client) DeleteIndustry(ctx context.Context, id string) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, "/industries/"+escape(id), nil)
	return err
}

// SubmitEnquiry posts the contact form as multipart, with line items as a
// JSON string and files under "attachments".
func (c *Client) SubmitEnquiry(ctx context.Context, e domain.Enquiry, files []domain.Attachment) error {
	items, err := json.Marshal(e.LineItems)
	if err != nil {
		return err
	}
	fields := map[string]string{
		"companyName": e.CompanyName,
		"contactName": e.ContactName,
		"email":       e.Email,
		"country":     e.Country,
		"city":        e.City,
		"enquiryType": e.EnquiryType,
		"description": e.Description,
		"lineItems":   string(items),
	}
	_, err = c.sendMultipart(ctx, "/enquiry", fields, "attachments", files)
	return err
}

// Dashboard aggregates come back as raw JSON values; their shapes vary by
// backend version and are normalized leniently by the caller.

func (c *Client) Metrics(ctx context.Context) (any, error) {
	return c.getRaw(ctx, "/dashboard", nil)
}

func (c *Client) ProductPopularity(ctx context.Context) (any, error) {
	return c.getRaw(ctx, "/dashboard/product-popularity", nil)
}

func (c *Client) RFQAnalytics(ctx context.Context) (any, error) {
	return c.getRaw(ctx, "/dashboard/rfq-analytics", nil)
}

func (c *Client) Search(ctx context.Context, term string) (any, error) {
	return c.getRaw(ctx, "/dashboard/search", Params("q", term))
}

func (c *Client) getRaw(ctx context.Context, path string, q url.Values) (any, error) {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	v, err := normalize.Parse(body)
	if err != nil {
		return nil, &normalize.DecodeError{Target: "any", Shape: "invalid json", Err: err}
	}
	return v, nil
}

func sendObject[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	body, err := c.sendJSON(ctx, method, path, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(body) == 0 {
		var zero T
		return zero, nil
	}
	return normalize.DecodeObject[T](body)
}

func summary(body []byte) (map[string]any, error) {
	if len(body) == 0 {
		return map[string]any{}, nil
	}
	v, err := normalize.Parse(body)
	if err != nil {
		return nil, &normalize.DecodeError{Target: "map[string]interface {}", Shape: "invalid json", Err: err}
	}
	return normalize.ExtractObject(v, map[string]any{}), nil
}
