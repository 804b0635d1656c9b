package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls the CORS middleware. Zero values for methods,
// headers, and max age fall back to the defaults below.
type CORSConfig struct {
	// AllowedOrigins lists origins that may call the API. A "*" entry
	// allows everything and should stay confined to development.
	AllowedOrigins []string

	AllowedMethods []string
	AllowedHeaders []string

	// ExposedHeaders lists response headers the browser may read.
	ExposedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int

	AllowCredentials bool

	// Environment set to "development" behaves as if AllowedOrigins
	// contained "*".
	Environment string
}

var (
	defaultMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", "X-User-ID"}
)

// DefaultCORSConfig is the permissive development setup.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultMethods,
		AllowedHeaders: defaultHeaders,
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-ID"},
		MaxAge:         3600,
		Environment:    "development",
	}
}

// cors holds the precomputed header values so the per-request path only
// does map lookups and header writes.
type cors struct {
	wildcard    bool
	origins     map[string]struct{}
	methods     string
	headers     string
	exposed     string
	maxAge      string
	credentials bool
}

func newCORS(cfg CORSConfig) *cors {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = defaultMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = defaultHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	c := &cors{
		wildcard:    cfg.Environment == "development",
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
		maxAge:      strconv.Itoa(cfg.MaxAge),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			c.wildcard = true
		}
		c.origins[o] = struct{}{}
	}
	return c
}

func (c *cors) setHeaders(w http.ResponseWriter, origin string) {
	h := w.Header()

	switch {
	case c.wildcard:
		h.Set("Access-Control-Allow-Origin", "*")
	case origin != "":
		if _, ok := c.origins[origin]; ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
		}
	}

	h.Set("Access-Control-Allow-Methods", c.methods)
	h.Set("Access-Control-Allow-Headers", c.headers)
	if c.exposed != "" {
		h.Set("Access-Control-Expose-Headers", c.exposed)
	}
	h.Set("Access-Control-Max-Age", c.maxAge)

	if c.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

// CORS answers preflight requests and stamps cross-origin headers on
// everything else.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	c := newCORS(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.setHeaders(w, r.Header.Get("Origin"))

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
