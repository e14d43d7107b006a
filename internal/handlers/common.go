package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
	"casr-tracker/internal/services"
	"casr-tracker/internal/validation"
)

const (
	RoleManager = "manager"
	RoleMember  = "member"
)

var anyRole = []string{RoleManager, RoleMember}

func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := r.Header.Get("Role")
	if userRole == "" {
		logging.Logger.Warn("Event ID: ROLE_MISSING, Description: Role is missing in request header")
		return fmt.Errorf("role is missing in request header")
	}
	if slices.Contains(allowedRoles, userRole) {
		return nil
	}
	logging.Logger.Warnf("Event ID: ACCESS_FORBIDDEN, Description: role '%s' not in %v", userRole, allowedRoles)
	return fmt.Errorf("access forbidden: user does not have the required role")
}

// caller reads the identity headers set by the gateway. It writes the error
// response itself and reports false when the request cannot proceed.
func caller(w http.ResponseWriter, r *http.Request, allowedRoles []string) (tenant, actor string, ok bool) {
	if err := checkRole(r, allowedRoles); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return "", "", false
	}
	tenant = r.Header.Get("Tenant-ID")
	if tenant == "" {
		http.Error(w, "Missing Tenant-ID header", http.StatusBadRequest)
		return "", "", false
	}
	return tenant, r.Header.Get("Username"), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logging.Logger.Warnf("Event ID: INVALID_PAYLOAD, Description: %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps service errors onto HTTP responses. Unknown errors become
// a generic 500 so internals do not leak to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := validation.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fe})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidID), errors.Is(err, models.ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrCycle), errors.Is(err, services.ErrDependencyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Something went wrong, please try again", http.StatusInternalServerError)
	}
}

// EnableCORS answers preflight requests and stamps CORS headers.
func EnableCORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Role, Username, Tenant-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func health(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(name + " is running"))
	}
}
