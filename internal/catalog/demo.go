package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"souqnest/internal/domain"
)

// Demo serves the built-in sample dataset and keeps submitted RFQs in memory.
// It answers the same read calls as the REST client.
type Demo struct {
	Now func() time.Time

	mu   sync.Mutex
	rfqs []domain.RFQ
}

func NewDemo() *Demo { return &Demo{Now: time.Now} }

func (d *Demo) ListProducts(_ context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	return Paginate(FilterProducts(demoProducts(), q), q.Page, q.Limit), nil
}

// Product looks a product up by slug, falling back to id.
func (d *Demo) Product(_ context.Context, slug string) (domain.Product, error) {
	for _, p := range demoProducts() {
		if p.Slug == slug || p.ID == slug {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func (d *Demo) Features(ctx context.Context, productID string) ([]domain.Feature, error) {
	p, err := d.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.Features, nil
}

func (d *Demo) ListSuppliers(_ context.Context, q domain.SupplierQuery) (domain.Page[domain.Supplier], error) {
	return Paginate(FilterSuppliers(demoSuppliers(), q), q.Page, q.Limit), nil
}

func (d *Demo) Supplier(_ context.Context, id string) (domain.Supplier, error) {
	for _, s := range demoSuppliers() {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Supplier{}, domain.ErrNotFound
}

func (d *Demo) SupplierIndustries(ctx context.Context, id string) ([]domain.Industry, error) {
	s, err := d.Supplier(ctx, id)
	if err != nil {
		return nil, err
	}
	out := []domain.Industry{}
	for _, ind := range demoIndustries() {
		if s.InIndustry(ind.ID) {
			out = append(out, ind)
		}
	}
	return out, nil
}

func (d *Demo) Categories(context.Context) ([]domain.Category, error) {
	return demoCategories(), nil
}

// CategoryTree returns the flat demo categories as roots.
func (d *Demo) CategoryTree(context.Context) ([]domain.Category, error) {
	return demoCategories(), nil
}

func (d *Demo) Industries(context.Context) ([]domain.Industry, error) {
	return demoIndustries(), nil
}

// CreateRFQ stores the request as a PENDING RFQ with a fresh id.
func (d *Demo) CreateRFQ(_ context.Context, req domain.RFQRequest) (domain.RFQ, error) {
	r := domain.RFQ{
		ID:          uuid.NewString(),
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Country:     req.Country,
		Message:     req.Message,
		Status:      domain.RFQPending,
		Items:       append([]domain.RFQItem(nil), req.Items...),
		CreatedAt:   d.Now().UTC(),
	}
	d.mu.Lock()
	d.rfqs = append(d.rfqs, r)
	d.mu.Unlock()
	return r, nil
}

// ListRFQs returns submitted RFQs newest first.
func (d *Demo) ListRFQs(_ context.Context, q domain.RFQQuery) (domain.Page[domain.RFQ], error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.RFQ, 0, len(d.rfqs))
	for i := len(d.rfqs) - 1; i >= 0; i-- {
		if q.Status == "" || string(d.rfqs[i].Status) == q.Status {
			out = append(out, d.rfqs[i])
		}
	}
	return Paginate(out, q.Page, q.Limit), nil
}

func (d *Demo) RFQ(_ context.Context, id string) (domain.RFQ, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.rfqs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.RFQ{}, domain.ErrNotFound
}

// Metrics mirrors the backend dashboard counters.
func (d *Demo) Metrics(context.Context) (any, error) {
	d.mu.Lock()
	n := len(d.rfqs)
	d.mu.Unlock()
	return map[string]any{
		"totalSuppliers":  len(demoSuppliers()),
		"totalProducts":   len(demoProducts()),
		"totalCategories": len(demoCategories()),
		"totalIndustries": len(demoIndustries()),
		"totalRfqs":       n,
	}, nil
}

// ProductPopularity counts requested units per product across RFQs.
func (d *Demo) ProductPopularity(context.Context) (any, error) {
	d.mu.Lock()
	counts := map[string]int{}
	var order []string
	for _, r := range d.rfqs {
		for _, it := range r.Items {
			if _, seen := counts[it.ProductID]; !seen {
				order = append(order, it.ProductID)
			}
			counts[it.ProductID] += it.Quantity
		}
	}
	d.mu.Unlock()

	names := map[string]string{}
	for _, p := range demoProducts() {
		names[p.ID] = p.Name
	}
	rows := make([]any, 0, len(order))
	for _, id := range order {
		rows = append(rows, map[string]any{"productId": id, "productName": names[id], "count": counts[id]})
	}
	return map[string]any{"popularity": rows}, nil
}

func (d *Demo) RFQAnalytics(context.Context) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var pending, responded int
	for _, r := range d.rfqs {
		switch r.Status {
		case domain.RFQPending:
			pending++
		case domain.RFQResponded:
			responded++
		}
	}
	return map[string]any{"data": map[string]any{"pending": pending, "responded": responded, "total": len(d.rfqs)}}, nil
}

// Search matches products, suppliers and categories by name.
func (d *Demo) Search(_ context.Context, term string) (any, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	var products, suppliers, categories []any
	if term != "" {
		for _, p := range FilterProducts(demoProducts(), domain.ProductQuery{Search: term}) {
			products = append(products, p)
		}
		for _, s := range FilterSuppliers(demoSuppliers(), domain.SupplierQuery{Search: term}) {
			suppliers = append(suppliers, s)
		}
		for _, c := range demoCategories() {
			if strings.Contains(strings.ToLower(c.Name), term) {
				categories = append(categories, c)
			}
		}
	}
	return map[string]any{"products": products, "suppliers": suppliers, "categories": categories}, nil
}

// UpdateRFQStatus is the one admin write the demo source accepts, since the
// RFQs it holds were submitted to it.
func (d *Demo) UpdateRFQStatus(_ context.Context, id string, status domain.RFQStatus) (domain.RFQ, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.rfqs {
		if d.rfqs[i].ID == id {
			d.rfqs[i].Status = status
			return d.rfqs[i], nil
		}
	}
	return domain.RFQ{}, domain.ErrNotFound
}

func usd(n int64) []domain.Price {
	return []domain.Price{{Currency: "USD", Amount: decimal.NewFromInt(n)}}
}

func ts(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func demoCategories() []domain.Category {
	return []domain.Category{
		{ID: "cat-1", Name: "Manufacturing", Slug: "manufacturing", Icon: "🏭"},
		{ID: "cat-2", Name: "Electronics", Slug: "electronics", Icon: "💻"},
		{ID: "cat-3", Name: "Chemicals", Slug: "chemicals", Icon: "⚗️"},
		{ID: "cat-4", Name: "Textiles", Slug: "textiles", Icon: "🧵"},
		{ID: "cat-5", Name: "Machinery", Slug: "machinery", Icon: "⚙️"},
		{ID: "cat-6", Name: "Automotive", Slug: "automotive", Icon: "🚗"},
		{ID: "cat-7", Name: "Food & Beverage", Slug: "food-beverage", Icon: "🍽️"},
		{ID: "cat-8", Name: "Construction", Slug: "construction", Icon: "🏗️"},
	}
}

func demoIndustries() []domain.Industry {
	return []domain.Industry{
		{ID: "ind-1", Name: "Industrial Equipment"},
		{ID: "ind-2", Name: "Consumer Electronics"},
		{ID: "ind-3", Name: "Chemicals & Materials"},
		{ID: "ind-4", Name: "Textiles & Apparel"},
		{ID: "ind-5", Name: "Automotive & Parts"},
		{ID: "ind-6", Name: "Construction & Infrastructure"},
	}
}

func demoSuppliers() []domain.Supplier {
	sup := func(id, name string, typ domain.SupplierType, location, site, desc string, featured bool, industries ...string) domain.Supplier {
		return domain.Supplier{
			ID:           id,
			CompanyName:  name,
			SupplierType: typ,
			Location:     location,
			WebsiteURL:   site,
			Description:  desc,
			IsFeatured:   featured,
			IsVerified:   true,
			IndustryIDs:  industries,
		}
	}
	return []domain.Supplier{
		sup("sup-1", "Atlas Industrial Co.", domain.Manufacturer, "Dubai, UAE", "https://example.com/atlas",
			"Heavy machinery and industrial equipment supplier with global reach.", true, "ind-1", "ind-6"),
		sup("sup-2", "Nova Electronics Ltd.", domain.Trader, "Shenzhen, China", "https://example.com/nova",
			"OEM electronics supplier specializing in IoT and smart devices.", true, "ind-2"),
		sup("sup-3", "Cresta Materials", domain.Manufacturer, "Mumbai, India", "https://example.com/cresta",
			"Bulk chemicals and raw materials for industrial production.", true, "ind-3"),
		sup("sup-4", "LoomWorks Textiles", domain.Manufacturer, "Istanbul, Turkey", "https://example.com/loomworks",
			"Premium fabric and textile supplier for apparel brands.", false, "ind-4"),
		sup("sup-5", "Torque Auto Parts", domain.Trader, "Riyadh, KSA", "https://example.com/torque",
			"Automotive components supplier with rapid fulfillment.", false, "ind-5"),
		sup("sup-6", "BuildCore Supplies", domain.Contractor, "Doha, Qatar", "https://example.com/buildcore",
			"Construction materials and site-ready inventory partner.", false, "ind-6"),
	}
}

func demoProducts() []domain.Product {
	prod := func(id, slug, name, overview, image, catID, catName, industry string, price int64, created string) domain.Product {
		return domain.Product{
			ID:         id,
			Slug:       slug,
			Name:       name,
			Overview:   overview,
			ImageURL:   "/static/images/" + image,
			Category:   &domain.CategoryRef{ID: catID, Name: catName},
			IndustryID: industry,
			Prices:     usd(price),
			IsActive:   true,
			CreatedAt:  ts(created),
		}
	}
	return []domain.Product{
		prod("prod-1", "industrial-conveyor-belt", "Industrial Conveyor Belt",
			"Heavy-duty conveyor belt system for manufacturing lines.",
			"conveyor-belt.jpg", "cat-1", "Manufacturing", "ind-1", 4200, "2025-12-01T10:00:00Z"),
		prod("prod-2", "smart-iot-sensor-kit", "Smart IoT Sensor Kit",
			"Multi-sensor kit with gateway for real-time monitoring.",
			"iot-sensor-kit.jpg", "cat-2", "Electronics", "ind-2", 280, "2025-11-18T09:30:00Z"),
		prod("prod-3", "industrial-solvent-pack", "Industrial Solvent Pack",
			"High-purity solvents for industrial cleaning applications.",
			"solvent-pack.jpg", "cat-3", "Chemicals", "ind-3", 160, "2025-10-05T12:15:00Z"),
		prod("prod-4", "premium-cotton-fabric", "Premium Cotton Fabric",
			"Soft, durable fabric rolls for apparel manufacturing.",
			"cotton-fabric.jpg", "cat-4", "Textiles", "ind-4", 12, "2025-09-22T08:45:00Z"),
		prod("prod-5", "precision-gear-set", "Precision Gear Set",
			"Hardened steel gear set for heavy machinery.",
			"gear-set.jpg", "cat-5", "Machinery", "ind-1", 980, "2025-12-20T07:20:00Z"),
		prod("prod-6", "alloy-brake-discs", "Alloy Brake Discs",
			"Performance brake discs for automotive fleets.",
			"brake-discs.jpg", "cat-6", "Automotive", "ind-5", 95, "2025-08-12T14:05:00Z"),
		prod("prod-7", "construction-steel-beams", "Construction Steel Beams",
			"Structural steel beams for large-scale projects.",
			"steel-beams.jpg", "cat-8", "Construction", "ind-6", 1200, "2025-07-03T11:10:00Z"),
		prod("prod-8", "food-grade-packaging", "Food Grade Packaging",
			"Safe, durable packaging for food and beverage distribution.",
			"food-packaging.jpg", "cat-7", "Food & Beverage", "ind-6", 25, "2025-06-21T16:40:00Z"),
	}
}
