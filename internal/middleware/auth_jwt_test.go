package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifyJWT(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{
		Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix(), Issuer: "drafted", Audience: "drafted-clients",
	})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Sub != "user-1" || claims.Issuer != "drafted" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyJWTRejectsBadSignature(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "user-1"})
	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatal("expected signature rejection")
	}
	if _, err := VerifyJWT("secret", "not.a.token"); err == nil {
		t.Fatal("expected malformed token rejection")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "user-1", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func TestAuthJWTMiddleware(t *testing.T) {
	var gotUserID string
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header should be 401, got %d", w.Code)
	}

	token, _ := SignJWT("secret", TokenClaims{Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix()})
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token should pass, got %d", w.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("uid not propagated, got %q", gotUserID)
	}
}
