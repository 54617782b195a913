package services

import (
	"context"

	"github.com/shopspring/decimal"

	"souqnest/internal/cart"
	"souqnest/internal/domain"
	"souqnest/internal/repos"
)

// DisplayCurrency is the currency cart totals are shown in.
const DisplayCurrency = "USD"

type CartService struct {
	Storage *repos.LocalStorageRepo
	Catalog *CatalogService
}

func NewCartService(storage *repos.LocalStorageRepo, catalog *CatalogService) *CartService {
	return &CartService{Storage: storage, Catalog: catalog}
}

// Open loads the cart of session sid. Each call reads storage afresh; the
// Cart's own lock only serializes use of that one instance, so concurrent
// requests in a session are last-write-wins.
func (s *CartService) Open(sid string) *cart.Cart {
	return cart.Load(s.Storage.For(sid))
}

// AddBySlug resolves the product and adds it to ct.
func (s *CartService) AddBySlug(ctx context.Context, ct *cart.Cart, slug string) (domain.Product, error) {
	p, err := s.Catalog.Product(ctx, slug)
	if err != nil {
		return domain.Product{}, err
	}
	ct.Add(p)
	return p, nil
}

type CartView struct {
	Items    []domain.CartItem
	Count    int
	Total    decimal.Decimal
	Currency string
}

func (s *CartService) View(c *cart.Cart) CartView {
	return CartView{
		Items:    c.Items(),
		Count:    c.Count(),
		Total:    c.Total(DisplayCurrency),
		Currency: DisplayCurrency,
	}
}
