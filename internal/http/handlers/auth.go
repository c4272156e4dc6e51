package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"drafted/internal/middleware"
)

type tokenRequest struct {
	UID string `json:"uid"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// AuthToken issues a signed bearer token for the given uid. There is no
// upstream identity provider in this deployment; the caller is trusted
// to the extent the JWT secret is.
func (a *App) AuthToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "uid required")
		return
	}
	exp := time.Now().Add(24 * time.Hour).Unix()
	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      uid,
		Exp:      exp,
		Issuer:   "drafted",
		Audience: "drafted-clients",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp})
}
