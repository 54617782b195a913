// Package catalog filters, sorts and paginates in-memory catalog data and
// serves the demo dataset used when no backend is configured.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"souqnest/internal/domain"
)

const DefaultLimit = 12

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortAZ        = "a-z"
	SortZA        = "z-a"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// FilterProducts applies every non-empty criterion of q (AND) and then sorts
// by q.Sort. The input slice is not modified.
func FilterProducts(products []domain.Product, q domain.ProductQuery) []domain.Product {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	lo, hi, priced := priceBounds(q)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Overview), term) {
			continue
		}
		if q.CategoryID != "" && (p.Category == nil || p.Category.ID != q.CategoryID) {
			continue
		}
		if q.IndustryID != "" && !p.InIndustry(q.IndustryID) {
			continue
		}
		if priced && !inRange(p, q.Currency, lo, hi) {
			continue
		}
		out = append(out, p)
	}
	SortProducts(out, q.Sort)
	return out
}

// priceBounds returns the price window; priced is false unless a currency and
// at least one bound are present. Unparsable bounds fall back to 0 and +inf.
func priceBounds(q domain.ProductQuery) (lo decimal.Decimal, hi *decimal.Decimal, priced bool) {
	if q.Currency == "" || (q.MinPrice == "" && q.MaxPrice == "") {
		return decimal.Zero, nil, false
	}
	lo = decimal.Zero
	if d, err := decimal.NewFromString(strings.TrimSpace(q.MinPrice)); err == nil {
		lo = d
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(q.MaxPrice)); err == nil {
		hi = &d
	}
	return lo, hi, true
}

func inRange(p domain.Product, currency string, lo decimal.Decimal, hi *decimal.Decimal) bool {
	for _, pr := range p.Prices {
		if pr.Currency != currency || pr.Amount.LessThan(lo) {
			continue
		}
		if hi == nil || pr.Amount.LessThanOrEqual(*hi) {
			return true
		}
	}
	return false
}

// SortProducts sorts in place. Unknown or empty keys sort newest first.
func SortProducts(products []domain.Product, key string) {
	var cmp func(a, b domain.Product) int
	switch key {
	case SortOldest:
		cmp = func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortAZ, SortZA:
		col := collate.New(language.English, collate.IgnoreCase)
		cmp = func(a, b domain.Product) int { return col.CompareString(a.Name, b.Name) }
		if key == SortZA {
			cmp = func(a, b domain.Product) int { return col.CompareString(b.Name, a.Name) }
		}
	case SortPriceAsc:
		cmp = func(a, b domain.Product) int { return a.FirstPrice().Amount.Cmp(b.FirstPrice().Amount) }
	case SortPriceDesc:
		cmp = func(a, b domain.Product) int { return b.FirstPrice().Amount.Cmp(a.FirstPrice().Amount) }
	default:
		cmp = func(a, b domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	slices.SortStableFunc(products, cmp)
}

// FilterSuppliers matches the search term against the company name and
// applies the supplier type and industry filters.
func FilterSuppliers(suppliers []domain.Supplier, q domain.SupplierQuery) []domain.Supplier {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if term != "" && !strings.Contains(strings.ToLower(s.CompanyName), term) {
			continue
		}
		if q.SupplierType != "" && string(s.SupplierType) != q.SupplierType {
			continue
		}
		if q.IndustryID != "" && !s.InIndustry(q.IndustryID) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Paginate slices items into a 1-based page. Pages past the end are empty.
func Paginate[T any](items []T, page, limit int) domain.Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	total := len(items)
	totalPages := max(1, (total+limit-1)/limit)

	data := []T{}
	if start := (page - 1) * limit; start < total {
		end := min(start+limit, total)
		data = append(data, items[start:end]...)
	}
	return domain.Page[T]{
		Data: data,
		Meta: &domain.Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	}
}
