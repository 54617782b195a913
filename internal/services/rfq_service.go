package services

import (
	"context"

	"souqnest/internal/cart"
	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/querycache"
	"souqnest/internal/repos"
	"souqnest/internal/rfq"
)

// RFQService drives the per-session quote-request wizard.
type RFQService struct {
	Storage   *repos.LocalStorageRepo
	Catalog   *CatalogService
	Submitter rfq.Submitter
	Cache     *querycache.Cache
}

func (s *RFQService) Draft(sid string) *rfq.Draft {
	return rfq.Load(s.Storage.For(sid))
}

// ProceedFromCart moves ct, the cart of session sid, into the draft.
func (s *RFQService) ProceedFromCart(sid string, ct *cart.Cart) *rfq.Draft {
	d := s.Draft(sid)
	d.TransferFromCart(ct)
	return d
}

// AddProduct pre-fills the draft from a product page.
func (s *RFQService) AddProduct(ctx context.Context, sid, slug string, qty int) (*rfq.Draft, error) {
	p, err := s.Catalog.Product(ctx, slug)
	if err != nil {
		return nil, err
	}
	d := s.Draft(sid)
	d.AddProduct(p, qty)
	return d, nil
}

// Submit posts the session draft. A successful submission invalidates the
// cached RFQ lists and dashboard aggregates.
func (s *RFQService) Submit(ctx context.Context, sid string) (domain.RFQ, *rfq.Draft, error) {
	d := s.Draft(sid)
	created, err := d.Submit(ctx, s.Submitter)
	if err != nil {
		return domain.RFQ{}, d, err
	}
	s.Cache.Invalidate("rfqs")
	s.Cache.Invalidate("dashboard")
	applog.Audit(nil, "rfq.submit", map[string]any{"rfq_id": created.ID, "items": len(created.Items)})
	return created, d, nil
}
