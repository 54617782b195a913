package handlers

import (
	"souqnest/internal/apiclient"
	"souqnest/internal/catalog"
	"souqnest/internal/config"
	applog "souqnest/internal/log"
	"souqnest/internal/querycache"
	"souqnest/internal/repos"
	"souqnest/internal/rfq"
	"souqnest/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth  *services.AuthService
	Carts *services.CartService

	HomeHandler     *HomeHandler
	ProductHandler  *ProductHandler
	SupplierHandler *SupplierHandler
	CartHandler     *CartHandler
	RFQHandler      *RFQHandler
	ContactHandler  *ContactHandler
	AuthHandler     *AuthHandler
	AdminHandler    *AdminHandler
}

// NewDeps wires the services against the backend API, or against the
// built-in demo catalog when cfg.DemoMode is set.
func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	storage := repos.NewLocalStorageRepo(db, cfg.StorageQuota)
	cache := querycache.New(cfg.CacheTTL)

	var (
		src     services.Source
		sub     rfq.Submitter
		authn   services.Authenticator
		backend func(string) services.Backend
		enquiry services.Backend
		secret  []byte
	)
	if cfg.DemoMode {
		demo := catalog.NewDemo()
		src, sub = demo, demo
		secret = []byte(cfg.JWTSecret)
		authn = &services.DemoAuthenticator{Users: repos.NewUserRepo(db), Secret: secret}
		applog.Info(nil, "startup.demo", map[string]any{"reason": "no backend configured"})
	} else {
		client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
		src, sub, authn, enquiry = client, client, client, client
		backend = func(token string) services.Backend { return client.WithToken(token) }
	}

	catalogSvc := services.NewCatalogService(src, cache)
	cartSvc := services.NewCartService(storage, catalogSvc)
	rfqSvc := &services.RFQService{Storage: storage, Catalog: catalogSvc, Submitter: sub, Cache: cache}
	authSvc := &services.AuthService{Auth: authn, Storage: storage, Secret: secret}
	adminSvc := &services.AdminService{Reads: src, Backend: backend, Cache: cache}
	dashSvc := &services.DashboardService{Reads: src, Backend: backend, Cache: cache}
	enquirySvc := &services.EnquiryService{Backend: enquiry}

	return &Deps{
		Auth:            authSvc,
		Carts:           cartSvc,
		HomeHandler:     &HomeHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SupplierHandler: &SupplierHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, RFQ: rfqSvc},
		RFQHandler:      &RFQHandler{RFQ: rfqSvc, Catalog: catalogSvc},
		ContactHandler:  &ContactHandler{Enquiry: enquirySvc},
		AuthHandler:     &AuthHandler{Auth: authSvc},
		AdminHandler:    &AdminHandler{Admin: adminSvc, Dashboard: dashSvc, Catalog: catalogSvc, Auth: authSvc, Demo: cfg.DemoMode},
	}
}
