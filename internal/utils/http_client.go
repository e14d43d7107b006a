package utils

import (
	"net/http"
	"time"
)

func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// ForwardedHeaders are copied from an incoming request onto calls made on
// its behalf to other services.
var ForwardedHeaders = []string{"Authorization", "Role", "Username", "Tenant-ID"}

func copyHeaders(dst, src http.Header) {
	for _, h := range ForwardedHeaders {
		if v := src.Get(h); v != "" {
			dst.Set(h, v)
		}
	}
}
