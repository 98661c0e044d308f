package main

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

var (
	ipLock     sync.Mutex
	ipLimiters = make(map[string]*rate.Limiter)
)

func getIPLimiter(ip string) *rate.Limiter {
	ipLock.Lock()
	defer ipLock.Unlock()
	limiter, exists := ipLimiters[ip]
	if !exists {
		limiter = rate.NewLimiter(5, 20)
		ipLimiters[ip] = limiter
	}
	return limiter
}

// middlewareSecurity applies a coarse per-IP token bucket ahead of the
// fleet's own per-player rate limiter (C6), so a single hostile address
// cannot flood the process with requests for many distinct player ids.
func middlewareSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip != "::1" && ip != "127.0.0.1" {
			if !getIPLimiter(ip).Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func middlewareCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Player-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
