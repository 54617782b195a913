package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souqnest/internal/apiclient"
	"souqnest/internal/domain"
	"souqnest/internal/querycache"
	"souqnest/internal/services"
	"souqnest/internal/validate"
)

// fakeBackend answers the handful of endpoints the admin tests touch and
// records the bearer token of every write.
type fakeBackend struct {
	mu        sync.Mutex
	suppliers []domain.Supplier
	auth      []string
	listCalls int
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers":
		f.listCalls++
		list := append([]domain.Supplier{}, f.suppliers...)
		_ = json.NewEncoder(w).Encode(map[string]any{"suppliers": list, "total": len(list)})
	case r.Method == http.MethodPost && r.URL.Path == "/suppliers":
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		var in domain.SupplierInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s := domain.Supplier{ID: "sup-new", CompanyName: in.CompanyName, SupplierType: in.SupplierType}
		f.suppliers = append(f.suppliers, s)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": s})
	case r.Method == http.MethodDelete:
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Forbidden"}`))
	default:
		http.NotFound(w, r)
	}
}

func TestAdminService_WriteForwardsTokenAndInvalidates(t *testing.T) {
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL, time.Second)
	cache := querycache.New(time.Minute)
	cat := services.NewCatalogService(client, cache)
	admin := &services.AdminService{
		Reads:   client,
		Backend: func(tok string) services.Backend { return client.WithToken(tok) },
		Cache:   cache,
	}
	ctx := context.Background()

	page, err := cat.ListSuppliers(ctx, domain.SupplierQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	created, err := admin.CreateSupplier(ctx, "tok-1", domain.SupplierInput{CompanyName: "Delta Pumps", SupplierType: domain.Manufacturer})
	require.NoError(t, err)
	assert.Equal(t, "sup-new", created.ID)

	page, err = cat.ListSuppliers(ctx, domain.SupplierQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1, "list refetched after the create")
	assert.Equal(t, 2, fb.listCalls)
	assert.Equal(t, []string{"Bearer tok-1"}, fb.auth)

	err = admin.DeleteSupplier(ctx, "tok-1", "sup-new")
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.KindForbidden, apiErr.Kind)
}

func TestAdminService_ValidatesBeforeSending(t *testing.T) {
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, time.Second)
	admin := &services.AdminService{
		Reads:   client,
		Backend: func(tok string) services.Backend { return client.WithToken(tok) },
		Cache:   querycache.New(time.Minute),
	}

	_, err := admin.CreateSupplier(context.Background(), "tok", domain.SupplierInput{SupplierType: "WHOLESALER", WebsiteURL: "nope"})
	var fe validate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "companyName")
	assert.Contains(t, fe, "supplierType")
	assert.Contains(t, fe, "websiteUrl")
	assert.Empty(t, fb.auth, "nothing reached the backend")
}

func TestAdminService_DemoModeRequiresBackend(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.admin.CreateProduct(ctx, "", domain.ProductInput{Name: "Pump"})
	assert.ErrorIs(t, err, domain.ErrBackendRequired)
	assert.ErrorIs(t, s.admin.DeleteCategory(ctx, "", "cat-1"), domain.ErrBackendRequired)
	_, err = s.admin.CreateIndustry(ctx, "", domain.IndustryInput{Name: "Mining"})
	assert.ErrorIs(t, err, domain.ErrBackendRequired)
}

func TestAdminService_DemoRFQStatus(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.rfqs.AddProduct(ctx, "sid", "construction-steel-beams", 12)
	require.NoError(t, err)
	s.rfqs.Draft("sid").SetContact(buyer)
	created, _, err := s.rfqs.Submit(ctx, "sid")
	require.NoError(t, err)

	got, err := s.admin.RFQ(ctx, "", created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RFQPending, got.Status)

	_, err = s.admin.UpdateRFQStatus(ctx, "", created.ID, "CLOSED")
	var fe validate.FieldErrors
	assert.ErrorAs(t, err, &fe)

	updated, err := s.admin.UpdateRFQStatus(ctx, "", created.ID, domain.RFQResponded)
	require.NoError(t, err)
	assert.Equal(t, domain.RFQResponded, updated.Status)

	got, err = s.admin.RFQ(ctx, "", created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RFQResponded, got.Status, "cached detail was invalidated")

	_, err = s.admin.UpdateRFQStatus(ctx, "", "missing", domain.RFQResponded)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
