package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoPassword = "Passw0rd!"

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func adminBrowser(t *testing.T) *browser {
	t.Helper()
	b := newBrowser(t, newApp(t, demoConfig()))
	require.Equal(t, http.StatusFound, b.login("admin@souqnest.test", demoPassword).StatusCode)
	// picks up the admin CSRF cookie
	require.Equal(t, http.StatusOK, b.api("GET", "/admin/api/me", nil).StatusCode)
	return b
}

func TestAdminAPIRequiresSuperAdmin(t *testing.T) {
	app := newApp(t, demoConfig())

	anon := newBrowser(t, app)
	resp := anon.api("GET", "/admin/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	buyer := newBrowser(t, app)
	require.Equal(t, http.StatusFound, buyer.login("buyer@souqnest.test", demoPassword).StatusCode)
	logs := captureLogs(t, func() {
		resp = buyer.api("GET", "/admin/api/dashboard", nil)
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_, ok := findLog(logs, "access.denied.admin")
	assert.True(t, ok, "expected access.denied.admin log")

	admin := newBrowser(t, app)
	require.Equal(t, http.StatusFound, admin.login("admin@souqnest.test", demoPassword).StatusCode)
	resp = admin.api("GET", "/admin/api/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode(t, resp)
	assert.NotEmpty(t, me["csrfToken"])
	assert.Equal(t, true, me["demo"])
	user, _ := me["user"].(map[string]any)
	assert.Equal(t, "SUPER_ADMIN", user["role"])
}

func TestAdminDashboardInDemoMode(t *testing.T) {
	b := adminBrowser(t)

	resp := b.api("GET", "/admin/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d := decode(t, resp)
	counts, _ := d["counts"].(map[string]any)
	assert.EqualValues(t, 6, counts["suppliers"])
	assert.EqualValues(t, 8, counts["products"])
	assert.Contains(t, d, "rfqStats")

	resp = b.api("GET", "/admin/api/search?q=beams", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products, _ := decode(t, resp)["products"].([]any)
	assert.Len(t, products, 1)
}

func TestAdminRFQStatusUpdate(t *testing.T) {
	b := adminBrowser(t)

	// file an RFQ through the storefront first
	b.post("/rfq/items", url.Values{"product": {"construction-steel-beams"}, "qty": {"12"}})
	b.post("/rfq/next", nil)
	b.post("/rfq/contact", url.Values{
		"companyName": {"BuildRight LLC"},
		"contactName": {"Nadia Haddad"},
		"email":       {"nadia@buildright.example"},
		"phone":       {"+974 4000 0000"},
	})
	require.Equal(t, http.StatusFound, b.post("/rfq/submit", nil).StatusCode)

	resp := b.api("GET", "/admin/api/rfqs?status=PENDING", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows, _ := decode(t, resp)["data"].([]any)
	require.Len(t, rows, 1)
	id := rows[0].(map[string]any)["id"].(string)

	resp = b.api("PATCH", "/admin/api/rfqs/"+id+"/status", map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields, _ := decode(t, resp)["fields"].(map[string]any)
	assert.Contains(t, fields, "status")

	resp = b.api("PATCH", "/admin/api/rfqs/"+id+"/status", map[string]string{"status": "RESPONDED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RESPONDED", decode(t, resp)["status"])

	// the cached list was invalidated by the write
	resp = b.api("GET", "/admin/api/rfqs?status=PENDING", nil)
	rows, _ = decode(t, resp)["data"].([]any)
	assert.Empty(t, rows)

	resp = b.api("GET", "/admin/api/rfqs?status=NOPE", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminWritesNeedCSRFHeader(t *testing.T) {
	b := adminBrowser(t)
	tok := b.cookies["csrf_admin"]
	require.NotEmpty(t, tok)

	delete(b.cookies, "csrf_admin")
	req := map[string]string{"name": "Mining"}
	resp := b.api("POST", "/admin/api/industries", req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	b.cookies["csrf_admin"] = tok
	resp = b.api("POST", "/admin/api/industries", req)
	// demo mode has no backend to write to
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["error"], "demo mode")
}

func TestAdminInputIsValidatedBeforeForwarding(t *testing.T) {
	b := adminBrowser(t)

	resp := b.api("POST", "/admin/api/suppliers", map[string]any{
		"supplierType": "WHOLESALER",
		"websiteUrl":   "not a url",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields, _ := decode(t, resp)["fields"].(map[string]any)
	assert.Contains(t, fields, "companyName")
	assert.Contains(t, fields, "supplierType")
	assert.Contains(t, fields, "websiteUrl")

	resp = b.api("GET", "/admin/api/products?search=%3Cscript%3E", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminReadsInDemoMode(t *testing.T) {
	b := adminBrowser(t)

	resp := b.api("GET", "/admin/api/products?categoryId=cat-2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode(t, resp)
	rows, _ := page["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "smart-iot-sensor-kit", rows[0].(map[string]any)["slug"])
	meta, _ := page["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["total"])

	resp = b.api("GET", "/admin/api/categories?tree=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cats, _ := decode(t, resp)["data"].([]any)
	assert.Len(t, cats, 8)

	resp = b.api("GET", "/admin/api/suppliers/sup-404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
