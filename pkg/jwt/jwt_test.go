package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateValidate(t *testing.T) {
	if err := Init("test-secret"); err != nil {
		t.Fatal(err)
	}
	tok, err := Generate("dev-1")
	if err != nil {
		t.Fatal(err)
	}
	c, err := Validate(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.DeviceID != "dev-1" || c.Subject != "dev-1" {
		t.Fatalf("claims = %+v", c)
	}

	if _, err := Validate(tok + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
}

func TestInitRequiresSecret(t *testing.T) {
	if err := Init(""); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestRequireDevice(t *testing.T) {
	_ = Init("test-secret")
	tok, _ := Generate("dev-9")

	var seen string
	h := RequireDevice(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r.Context()).DeviceID
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "dev-9" {
		t.Fatalf("status %d device %q", rec.Code, seen)
	}
}
