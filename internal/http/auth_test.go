package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// Login success and failure paths, their audit logs, and the login throttle.
func TestLoginSuccessFailAndThrottle(t *testing.T) {
	b := newBrowser(t, newApp(t, demoConfig()))
	b.get("/login")

	var resp *http.Response
	failLogs := captureLogs(t, func() {
		resp = b.post("/login", url.Values{"email": {"buyer@souqnest.test"}, "password": {"Wrongpass1"}})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}
	if !strings.Contains(bodyOf(t, resp), "Invalid email or password") {
		t.Fatalf("generic login error missing")
	}
	e, ok := findLog(failLogs, "auth.login.fail")
	if !ok {
		t.Fatalf("auth.login.fail log not found")
	}
	if _, ok := e.Fields["email"]; !ok {
		t.Fatalf("auth.login.fail missing email field")
	}

	okLogs := captureLogs(t, func() {
		resp = b.post("/login", url.Values{"email": {"buyer@souqnest.test"}, "password": {demoPassword}})
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	if _, ok := findLog(okLogs, "auth.login.success"); !ok {
		t.Fatalf("auth.login.success log not found")
	}
	if !strings.Contains(bodyOf(t, b.get("/")), "buyer@souqnest.test") {
		t.Fatalf("header should show the signed-in user")
	}

	// the route allows five attempts per window; two are used
	for i := 0; i < 3; i++ {
		b.post("/login", url.Values{"email": {"buyer@souqnest.test"}, "password": {"Wrongpass1"}})
	}
	throttleLogs := captureLogs(t, func() {
		resp = b.post("/login", url.Values{"email": {"buyer@souqnest.test"}, "password": {demoPassword}})
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", resp.StatusCode)
	}
	if !strings.Contains(bodyOf(t, resp), "Too many attempts") {
		t.Fatalf("throttle message missing")
	}
	hit, ok := findLog(throttleLogs, "rate.login.hit")
	if !ok || hit.Level != "warn" {
		t.Fatalf("expected rate.login.hit at warn level, got %+v", hit)
	}
}

func TestLoginRejectsMalformedInputWithoutLookup(t *testing.T) {
	b := newBrowser(t, newApp(t, demoConfig()))
	b.get("/login")

	var resp *http.Response
	logs := captureLogs(t, func() {
		resp = b.post("/login", url.Values{"email": {"not-an-email"}, "password": {demoPassword}})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	e, ok := findLog(logs, "auth.login.fail")
	if !ok || e.Fields["reason"] != "bad_format" {
		t.Fatalf("expected auth.login.fail with reason bad_format, got %+v", e)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	app := newApp(t, demoConfig())
	b := newBrowser(t, app)
	if resp := b.login("admin@souqnest.test", demoPassword); resp.StatusCode != http.StatusFound {
		t.Fatalf("login: %d", resp.StatusCode)
	}
	sid := b.cookies["sid"]

	if resp := b.post("/logout", nil); resp.StatusCode != http.StatusFound {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	if _, ok := b.cookies["sid"]; ok {
		t.Fatalf("sid cookie should be expired")
	}

	// replaying the old session id does not restore the login
	b.cookies["sid"] = sid
	if resp := b.api("GET", "/admin/api/dashboard", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestCSRFRequiredOnForms(t *testing.T) {
	b := newBrowser(t, newApp(t, demoConfig()))
	b.get("/")

	body := strings.NewReader(url.Values{"product": {"precision-gear-set"}}.Encode())
	req := httptest.NewRequest("POST", "/cart", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := b.do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", resp.StatusCode)
	}
	if strings.Contains(bodyOf(t, b.get("/cart")), "Precision Gear Set") {
		t.Fatalf("cart changed despite failed csrf check")
	}
}
