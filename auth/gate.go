package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidvatten/tidvatten/api"
	"github.com/tidvatten/tidvatten/common"
	"github.com/tidvatten/tidvatten/interfaces"
	"github.com/tidvatten/tidvatten/metrics"
)

// HeaderName is the request header carrying the API token.
const HeaderName = "Authorization"

var (
	ErrMissing                  = errors.New("missing authorization header")
	ErrMalformed                = errors.New("malformed authorization header")
	ErrIdentityResolutionFailed = errors.New("identity resolution failed")
)

// Whitespace here is any Unicode White_Space character, not only the ASCII
// set Go's \s matches.
var tokenPattern = regexp.MustCompile(`Token[\s\v\x{85}\p{Z}](.*)`)

// ExtractToken returns the raw token from an Authorization header value.
// The remainder after "Token" and one whitespace character is returned
// without trimming or decoding.
func ExtractToken(header string) (string, bool) {
	match := tokenPattern.FindStringSubmatch(header)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Gate authenticates API requests.
type Gate struct {
	resolver interfaces.IdentityResolver
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewGate returns a gate resolving tokens with resolver. A nil m records
// metrics into a private registry.
func NewGate(resolver interfaces.IdentityResolver, log *slog.Logger, m *metrics.Metrics) *Gate {
	if m == nil {
		m = metrics.NewMetrics(common.PackageName, prometheus.NewRegistry())
	}
	return &Gate{
		resolver: resolver,
		log:      log,
		metrics:  m,
	}
}

// Authenticate validates an Authorization header value and resolves it to
// an identity. present is false when the request carried no header at all.
func (g *Gate) Authenticate(ctx context.Context, header string, present bool) (*interfaces.Identity, error) {
	if !present {
		g.log.Warn("Received request without authorization header")
		g.metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
		return nil, ErrMissing
	}

	token, ok := ExtractToken(header)
	if !ok {
		g.log.Warn("Received invalid token", "headerLength", len(header))
		g.metrics.AuthFailuresTotal.WithLabelValues("malformed").Inc()
		return nil, ErrMalformed
	}

	g.log.Debug("Received valid token, extracting user")
	identity, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		g.log.Info("Failed to resolve token", "err", err)
		g.metrics.AuthFailuresTotal.WithLabelValues("unresolved").Inc()
		return nil, fmt.Errorf("%w: %w", ErrIdentityResolutionFailed, err)
	}
	return identity, nil
}

// StatusCode maps an Authenticate error to the HTTP status returned to the client.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissing), errors.Is(err, ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, ErrIdentityResolutionFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Middleware rejects unauthenticated requests and stores the resolved
// identity in the request context for downstream handlers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values(HeaderName)
		header := ""
		if len(values) > 0 {
			header = values[0]
		}

		identity, err := g.Authenticate(r.Context(), header, len(values) > 0)
		if err != nil {
			api.WriteError(w, StatusCode(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *interfaces.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by Middleware.
func IdentityFromContext(ctx context.Context) (*interfaces.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*interfaces.Identity)
	return identity, ok && identity != nil
}
