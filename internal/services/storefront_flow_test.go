package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souqnest/internal/catalog"
	"souqnest/internal/domain"
	"souqnest/internal/querycache"
	"souqnest/internal/repos"
	"souqnest/internal/rfq"
	"souqnest/internal/services"
)

type stack struct {
	demo    *catalog.Demo
	storage *repos.LocalStorageRepo
	users   *repos.UserRepo
	cache   *querycache.Cache
	catalog *services.CatalogService
	carts   *services.CartService
	rfqs    *services.RFQService
	admin   *services.AdminService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := &stack{
		demo:    catalog.NewDemo(),
		storage: repos.NewLocalStorageRepo(db, 1<<20),
		users:   repos.NewUserRepo(db),
		cache:   querycache.New(time.Minute),
	}
	s.catalog = services.NewCatalogService(s.demo, s.cache)
	s.carts = services.NewCartService(s.storage, s.catalog)
	s.rfqs = &services.RFQService{Storage: s.storage, Catalog: s.catalog, Submitter: s.demo, Cache: s.cache}
	s.admin = &services.AdminService{Reads: s.demo, Cache: s.cache}
	return s
}

var buyer = rfq.Contact{
	CompanyName: "Acme Trading LLC",
	ContactName: "Sam Doe",
	Email:       "sam@acme.example",
	Phone:       "+971 4 000 0000",
}

func TestStorefrontFlow_CartToSubmittedRFQ(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	sid := "flow-session"
	ct := s.carts.Open(sid)

	_, err := s.carts.AddBySlug(ctx, ct, "industrial-conveyor-belt")
	require.NoError(t, err)
	_, err = s.carts.AddBySlug(ctx, ct, "industrial-conveyor-belt")
	require.NoError(t, err)
	_, err = s.carts.AddBySlug(ctx, ct, "smart-iot-sensor-kit")
	require.NoError(t, err)

	view := s.carts.View(s.carts.Open(sid))
	assert.Equal(t, 3, view.Count)
	assert.True(t, decimal.NewFromInt(2*4200+280).Equal(view.Total), view.Total.String())
	assert.Equal(t, "USD", view.Currency)

	// admin list is cached empty before the submission
	before, err := s.admin.ListRFQs(ctx, "", domain.RFQQuery{})
	require.NoError(t, err)
	assert.Empty(t, before.Data)

	d := s.rfqs.ProceedFromCart(sid, ct)
	require.Len(t, d.Items, 2)
	assert.Equal(t, 2, d.Items[0].Quantity)
	assert.Equal(t, 0, s.carts.View(s.carts.Open(sid)).Count, "cart is cleared by the transfer")

	require.NoError(t, d.Next())
	d.SetContact(buyer)
	require.NoError(t, d.Next())

	created, after, err := s.rfqs.Submit(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.RFQPending, created.Status)
	assert.Equal(t, rfq.StatusSucceeded, after.Status)
	assert.Empty(t, after.Items)

	reloaded := s.rfqs.Draft(sid)
	assert.Equal(t, created.ID, reloaded.RFQID)
	assert.Equal(t, rfq.StepProducts, reloaded.Step)

	list, err := s.admin.ListRFQs(ctx, "", domain.RFQQuery{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1, "the submission invalidated the cached list")
	assert.Equal(t, []domain.RFQItem{{ProductID: "prod-1", Quantity: 2}, {ProductID: "prod-2", Quantity: 1}}, list.Data[0].Items)
}

func TestRFQService_AddProductFromProductPage(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	d, err := s.rfqs.AddProduct(ctx, "pdp", "precision-gear-set", 40)
	require.NoError(t, err)
	require.Len(t, d.Items, 1)
	assert.Equal(t, 40, d.Items[0].Quantity)

	_, err = s.rfqs.AddProduct(ctx, "pdp", "no-such-product", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, s.rfqs.Draft("pdp").Items, 1)
}

func TestRFQService_SubmitInvalidContactKeepsDraft(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.rfqs.AddProduct(ctx, "bad", "alloy-brake-discs", 4)
	require.NoError(t, err)
	d := s.rfqs.Draft("bad")
	c := buyer
	c.Email = "someone@gmail.com"
	d.SetContact(c)

	_, after, err := s.rfqs.Submit(ctx, "bad")
	assert.ErrorIs(t, err, rfq.ErrInvalidContact)
	assert.Equal(t, rfq.StepCompany, after.Step)
	assert.Len(t, s.rfqs.Draft("bad").Items, 1)

	page, err := s.demo.ListRFQs(ctx, domain.RFQQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.carts.AddBySlug(ctx, s.carts.Open("a"), "premium-cotton-fabric")
	require.NoError(t, err)
	s.carts.Open("a").UpdateQuantity("prod-4", 25)

	assert.Equal(t, 25, s.carts.View(s.carts.Open("a")).Count)
	assert.Equal(t, 0, s.carts.View(s.carts.Open("b")).Count)

	s.carts.Open("a").Decrement("prod-4")
	assert.Equal(t, 24, s.carts.View(s.carts.Open("a")).Count)
	s.carts.Open("a").UpdateQuantity("prod-4", 0)
	assert.Empty(t, s.carts.View(s.carts.Open("a")).Items)
}

func TestFlattenTree(t *testing.T) {
	parent := "root"
	tree := []domain.Category{{
		ID: "root",
		Subcategories: []domain.Category{{
			ID:       "child",
			ParentID: &parent,
			Subcategories: []domain.Category{
				{ID: "grandchild", Subcategories: []domain.Category{{ID: "great"}}},
			},
		}},
	}}

	flat := services.FlattenTree(tree)
	require.Len(t, flat, 1)
	var ids []string
	for _, c := range flat[0].Subcategories {
		ids = append(ids, c.ID)
		assert.Empty(t, c.Subcategories)
	}
	assert.Equal(t, []string{"child", "grandchild", "great"}, ids)
}

func TestCatalogService_CachesReads(t *testing.T) {
	src := &countingSource{Source: catalog.NewDemo()}
	svc := services.NewCatalogService(src, querycache.New(time.Minute))
	ctx := context.Background()

	for range 3 {
		_, err := svc.Industries(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.industries)
}

type countingSource struct {
	services.Source
	industries int
}

func (c *countingSource) Industries(ctx context.Context) ([]domain.Industry, error) {
	c.industries++
	return c.Source.Industries(ctx)
}
