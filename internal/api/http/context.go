package http

import (
	"context"
	"net/http"
	"strconv"

	"bora-alugar-backend/internal/security"
	"bora-alugar-backend/internal/service"

	"github.com/gorilla/mux"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	rawTokenKey
)

func withClaims(ctx context.Context, claims *security.UserClaims, raw string) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, rawTokenKey, raw)
}

// claimsFrom returns the verified token claims, or nil on public routes
func claimsFrom(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}

func rawToken(ctx context.Context) string {
	raw, _ := ctx.Value(rawTokenKey).(string)
	return raw
}

// userID is only called on routes the auth middleware protected
func userID(r *http.Request) int32 {
	if claims := claimsFrom(r.Context()); claims != nil {
		return claims.UserID
	}
	return 0
}

func isAdmin(r *http.Request) bool {
	claims := claimsFrom(r.Context())
	return claims != nil && claims.IsAdmin()
}

// pathID parses a numeric mux path variable
func pathID(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || v <= 0 {
		return 0, &service.ValidationError{Fields: map[string]string{name: "must be a positive integer"}}
	}
	return int32(v), nil
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func page(r *http.Request) (int32, int32) {
	return int32(queryInt(r, "page", 1)), int32(queryInt(r, "pageSize", 0))
}
