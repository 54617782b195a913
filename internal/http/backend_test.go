package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souqnest/internal/config"
)

func backendConfig(baseURL string) config.Config {
	cfg := demoConfig()
	cfg.DemoMode = false
	cfg.APIBaseURL = baseURL
	cfg.JWTSecret = ""
	return cfg
}

func TestBackendDownShowsConnectionBanner(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	b := newBrowser(t, newApp(t, backendConfig(url)))

	resp := b.get("/products")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, bodyOf(t, resp), "reach the catalog service")

	resp = b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "home degrades instead of failing")
	assert.Contains(t, bodyOf(t, resp), "reach the catalog service")
}

// fakeAPI answers the handful of backend calls the test walks through.
type fakeAPI struct {
	deletes atomic.Int32
	auth    atomic.Value
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == "POST" && r.URL.Path == "/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "Sup3rSecret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"token":"opaque-admin","user":{"id":"a1","email":"ops@souq.example","name":"Ops","role":"SUPER_ADMIN"}}}`))
	case r.Method == "GET" && r.URL.Path == "/products":
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"p1","slug":"hydraulic-pump","name":"Hydraulic Pump","prices":[{"currency":"USD","amount":"315.5"}]}],"pagination":{"total":1,"page":1,"limit":12}}`))
	case r.Method == "GET" && (r.URL.Path == "/categories" || r.URL.Path == "/industries"):
		_, _ = w.Write([]byte(`[]`))
	case r.Method == "DELETE" && r.URL.Path == "/suppliers/s1":
		f.deletes.Add(1)
		f.auth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

func TestBackendModeForwardsAdminToken(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	b := newBrowser(t, newApp(t, backendConfig(srv.URL)))

	resp := b.get("/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := bodyOf(t, resp)
	assert.Contains(t, page, "Hydraulic Pump")
	assert.Contains(t, page, "USD 315.50")

	resp = b.login("ops@souq.example", "Wrong1pass")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = b.login("ops@souq.example", "Sup3rSecret")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, http.StatusOK, b.api("GET", "/admin/api/me", nil).StatusCode)

	resp = b.api("DELETE", "/admin/api/suppliers/s1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.EqualValues(t, 1, api.deletes.Load())
	assert.Equal(t, "Bearer opaque-admin", api.auth.Load())

	resp = b.api("DELETE", "/admin/api/suppliers/s2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, strings.Contains(bodyOf(t, resp), "not found\""), "backend text is not echoed")
}
