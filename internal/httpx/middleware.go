package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-flash-sale.git/internal/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// UserID balikin id user hasil resolve session; "" kalau tidak ada.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// BearerToken ambil token dari header Authorization.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}

// RequireAuth resolve bearer token -> user id lewat collaborator auth.
func RequireAuth(resolver *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r.Context(), BearerToken(r))
			if err != nil {
				writeErr(w, http.StatusUnauthorized, auth.ErrNotAuthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
		})
	}
}
