package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "courts/pkg/errors"
	httputil "courts/pkg/http"
	"courts/pkg/logger"

	"golang.org/x/time/rate"
)

type ClientExtractor func(r *http.Request) string

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client. Each bucket holds
// `limit` tokens and refills at limit/window.
type ClientRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     int
	every     rate.Limit
	window    time.Duration
	extractor ClientExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewClientRateLimiter(limit int, window time.Duration, extractor ClientExtractor, log *logger.Logger) *ClientRateLimiter {
	if extractor == nil {
		extractor = ClientIP
	}

	limiter := &ClientRateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     limit,
		every:     rate.Every(window / time.Duration(limit)),
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for client, entry := range rl.clients {
				// An idle bucket is full again, so dropping it changes nothing.
				if time.Since(entry.lastSeen) > rl.window {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *ClientRateLimiter) reserve(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.clients[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[client] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *ClientRateLimiter) Allow(client string) bool {
	if client == "" {
		return true
	}
	return rl.reserve(client).Allow()
}

func (rl *ClientRateLimiter) retryAfter() int {
	return int(math.Ceil(float64(rl.window) / float64(rl.limit) / float64(time.Second)))
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := limiter.extractor(r)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.limit))

			if !limiter.Allow(client) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"client", client,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(limiter.retryAfter()))
				appErr := apperrors.New(apperrors.CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
				httputil.WriteRawError(w, appErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys on the connection address. Forwarding headers are ignored
// because any caller can set them; use TrustedProxyClientIP behind a proxy.
func ClientIP(r *http.Request) string {
	return remoteHost(r)
}

// TrustedProxyClientIP honors X-Forwarded-For and X-Real-IP only when the
// connection comes from one of proxies (IPs or CIDRs). The client is the
// rightmost X-Forwarded-For hop that is not itself a trusted proxy.
func TrustedProxyClientIP(proxies []string) (ClientExtractor, error) {
	trusted, err := parseTrustedProxies(proxies)
	if err != nil {
		return nil, err
	}
	if len(trusted) == 0 {
		return ClientIP, nil
	}

	isTrusted := func(ip string) bool {
		addr, err := netip.ParseAddr(ip)
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, prefix := range trusted {
			if prefix.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		remote := remoteHost(r)
		if !isTrusted(remote) {
			return remote
		}

		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			for i := len(hops) - 1; i >= 0; i-- {
				hop := strings.TrimSpace(hops[i])
				if hop == "" || isTrusted(hop) {
					continue
				}
				return hop
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		return remote
	}, nil
}

func parseTrustedProxies(proxies []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(proxies))
	for _, proxy := range proxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}
		if strings.Contains(proxy, "/") {
			prefix, err := netip.ParsePrefix(proxy)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", proxy, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", proxy, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
