package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ownerLogin(t *testing.T, r http.Handler, pin string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(OwnerLoginRequest{Pin: pin})
	req := httptest.NewRequest(http.MethodPost, "/api/owner/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOwnerLogin(t *testing.T) {
	r, _ := setupServer(t)

	w := ownerLogin(t, r, "0000")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong pin: got %d, want 401", w.Code)
	}

	w = ownerLogin(t, r, "7777")
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != ownerCookieName || cookies[0].Value == "" {
		t.Fatalf("expected an %s cookie, got %v", ownerCookieName, cookies)
	}
}

func TestOwnerPools(t *testing.T) {
	r, _ := setupServer(t)

	// No cookie: unauthorized.
	req := httptest.NewRequest(http.MethodGet, "/api/owner/pools", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: got %d, want 401", w.Code)
	}

	lw := ownerLogin(t, r, "7777")
	cookie := lw.Result().Cookies()[0]

	// Activate a pool so the directory has an entry.
	cw := doJSON(t, r, http.MethodPost, "/api/pools", "", CreatePoolRequest{Title: "Listed", AdminPin: "4444"})
	var created CreatePoolResponse
	json.NewDecoder(cw.Body).Decode(&created)
	aw := doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/activate", "",
		ActivateRequest{LicenseKey: "00000000-11111111-22222222-33333333"})
	if aw.Code != http.StatusOK {
		t.Fatalf("activate: got %d", aw.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/owner/pools", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d: %s", w.Code, w.Body.String())
	}

	var resp OwnerPoolsResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Pools) != 1 {
		t.Fatalf("pools = %d, want 1", len(resp.Pools))
	}
	entry := resp.Pools[0]
	if entry.PoolCode != created.PoolCode || entry.Title != "Listed" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.LicenseKey != "00000000-11111111-22222222-33333333" {
		t.Errorf("license = %q", entry.LicenseKey)
	}
}

func TestOwnerLogout(t *testing.T) {
	r, _ := setupServer(t)

	lw := ownerLogin(t, r, "7777")
	cookie := lw.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/api/owner/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: got %d", w.Code)
	}

	// The session is gone server-side, not just the cookie.
	req = httptest.NewRequest(http.MethodGet, "/api/owner/pools", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout: got %d, want 401", w.Code)
	}
}
