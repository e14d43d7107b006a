package main

import (
	"net/http"
	"slices"
	"strings"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/utils"
)

// identityHeaders are only ever set by the gateway; client copies are dropped.
var identityHeaders = []string{"Role", "Username", "Tenant-ID"}

func authMiddleware(secret []byte, next http.Handler, allowedRoles []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range identityHeaders {
			r.Header.Del(h)
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logging.Logger.Warnf("Event ID: AUTH_INVALID_TOKEN, Description: %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if claims.Role == "" || claims.Tenant == "" {
			http.Error(w, "Missing role or tenant in token", http.StatusUnauthorized)
			return
		}
		if !slices.Contains(allowedRoles, claims.Role) {
			http.Error(w, "Access forbidden", http.StatusForbidden)
			return
		}

		r.Header.Set("Role", claims.Role)
		r.Header.Set("Username", claims.Username)
		r.Header.Set("Tenant-ID", claims.Tenant)
		next.ServeHTTP(w, r)
	})
}
