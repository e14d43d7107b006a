package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"casr-tracker/internal/config"
	"casr-tracker/internal/handlers"
	"casr-tracker/internal/logging"
)

var allRoles = []string{"manager", "member"}

func main() {
	cfg, err := config.Load("8000")
	if err != nil {
		logging.Logger.Fatalf("Event ID: ENV_LOAD_ERROR, Description: Error loading configuration: %v", err)
	}
	logging.InitLogger(logging.Options{SystemName: "api-gateway", FilePath: cfg.LogFile, Level: cfg.LogLevel, Console: true})
	if cfg.JWTSecret == "" {
		logging.Logger.Fatal("Event ID: JWT_SECRET_MISSING, Description: JWT_SECRET must be set")
	}

	router, err := newRouter(cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: GATEWAY_ROUTES_FAILED, Description: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.EnableCORS(cfg.CORSOrigin, router),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logging.Logger.Infof("Event ID: SERVER_START, Description: API gateway listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed: %v", err)
	}
}

func newRouter(cfg *config.Config) (*mux.Router, error) {
	secret := []byte(cfg.JWTSecret)
	targets := map[string]string{
		"/api/projects":    cfg.DashboardURL,
		"/api/compliance":  cfg.DashboardURL,
		"/api/occurrences": cfg.DashboardURL,
		"/api/sanctions":   cfg.DashboardURL,
		"/api/activity":    cfg.DashboardURL,
		"/api/users":       cfg.DashboardURL,
		"/api/search":      cfg.DashboardURL,
		"/api/chat":        cfg.ChatURL,
		"/api/workflow":    cfg.WorkflowServiceURL,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API gateway is running"))
	}).Methods(http.MethodGet)

	for prefix, target := range targets {
		proxy, err := reverseProxyURL(target)
		if err != nil {
			return nil, err
		}
		r.PathPrefix(prefix).Handler(authMiddleware(secret, proxy, allRoles))
	}
	return r, nil
}

func reverseProxyURL(target string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	proxy := httputil.NewSingleHostReverseProxy(u)
	// The gateway answers CORS itself; backend copies would duplicate it.
	proxy.ModifyResponse = func(response *http.Response) error {
		for key := range response.Header {
			if strings.HasPrefix(key, "Access-Control-") {
				response.Header.Del(key)
			}
		}
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Logger.Errorf("Event ID: PROXY_ERROR, Description: %s %s -> %s: %v", r.Method, r.URL.Path, u.Host, err)
		http.Error(w, "Service unavailable", http.StatusBadGateway)
	}
	return proxy, nil
}
