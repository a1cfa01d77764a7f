package daemon

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"jotter/internal/logging"
)

const (
	limiterIdleTTL         = 10 * time.Minute
	limiterCleanupInterval = time.Minute
)

// keyedRateLimiter hands out one token bucket per key. Buckets idle for
// longer than limiterIdleTTL are evicted.
type keyedRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

func newKeyedRateLimiter(perInterval int, interval time.Duration, burst int) *keyedRateLimiter {
	if perInterval <= 0 {
		perInterval = 1
	}
	if burst <= 0 {
		burst = perInterval
	}
	return &keyedRateLimiter{
		limiters: cache.New(limiterIdleTTL, limiterCleanupInterval),
		limit:    rate.Limit(float64(perInterval) / interval.Seconds()),
		burst:    burst,
	}
}

func (k *keyedRateLimiter) Allow(key string) bool {
	k.mu.Lock()
	var limiter *rate.Limiter
	if cached, ok := k.limiters.Get(key); ok {
		limiter = cached.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(k.limit, k.burst)
	}
	k.limiters.SetDefault(key, limiter)
	k.mu.Unlock()
	return limiter.Allow()
}

func (k *keyedRateLimiter) Len() int {
	return k.limiters.ItemCount()
}

func rateLimitMiddleware(limiter *keyedRateLimiter, proxies trustedProxies, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := proxies.clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate_limited", logging.F("ip", key), logging.F("path", r.URL.Path))
				writeServiceError(w, rateLimitedError("too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// trustedProxies lists the peers whose forwarding headers are believed.
type trustedProxies []*net.IPNet

// parseTrustedProxies accepts CIDRs and bare addresses. Entries that parse
// as neither are returned as invalid.
func parseTrustedProxies(entries []string) (trustedProxies, []string) {
	var out trustedProxies
	var invalid []string
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, network, err := net.ParseCIDR(entry); err == nil {
			out = append(out, network)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			invalid = append(invalid, entry)
			continue
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return out, invalid
}

func (p trustedProxies) trusts(addr string) bool {
	ip := net.ParseIP(strings.TrimSpace(addr))
	if ip == nil {
		return false
	}
	for _, network := range p {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP keys a request on its peer address. Forwarding headers count
// only when the peer is a trusted proxy; X-Forwarded-For is then walked
// from the right, skipping further trusted hops.
func (p trustedProxies) clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !p.trusts(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" || net.ParseIP(hop) == nil {
				break
			}
			if !p.trusts(hop) {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return peer
}
