package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"devflow/internal/contextutils"
	"devflow/internal/response"
	"devflow/internal/services"
)

// IdentityConfig selects how the caller's subject is resolved
type IdentityConfig struct {
	// JWTSecret verifies HS256 bearer tokens issued by the identity provider
	JWTSecret string
	// JWTIssuer, when set, must match the token's iss claim
	JWTIssuer string
	// TrustHeader accepts the subject from Header verbatim. Local development only.
	TrustHeader bool
	Header      string
}

// Identity resolves the caller's clerk id. Requests without credentials pass
// through anonymously; the core decides whether an identity is required.
// Presented but invalid credentials are rejected with 401.
type Identity struct {
	config  IdentityConfig
	builder *response.Builder
	logger  *zap.Logger
}

// NewIdentity creates the identity middleware
func NewIdentity(config IdentityConfig, builder *response.Builder, logger *zap.Logger) *Identity {
	if config.Header == "" {
		config.Header = "X-Clerk-User-Id"
	}
	return &Identity{config: config, builder: builder, logger: logger}
}

var errNoCredentials = errors.New("no credentials")

// Middleware places the resolved clerk id in the request context
func (id *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := id.resolve(r)
		switch {
		case errors.Is(err, errNoCredentials):
			next.ServeHTTP(w, r)
			return
		case err != nil:
			contextutils.GetLogger(r.Context(), id.logger).Info("Rejected bearer token", zap.Error(err))
			id.builder.WriteError(w, r, services.NewUnauthenticatedError("invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(contextutils.WithClerkID(r.Context(), subject)))
	})
}

func (id *Identity) resolve(r *http.Request) (string, error) {
	if token, ok := bearerToken(r); ok {
		return id.verify(token)
	}
	if id.config.TrustHeader {
		if subject := strings.TrimSpace(r.Header.Get(id.config.Header)); subject != "" {
			return subject, nil
		}
	}
	return "", errNoCredentials
}

func (id *Identity) verify(raw string) (string, error) {
	if id.config.JWTSecret == "" {
		return "", errors.New("token verification is not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if id.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(id.config.JWTIssuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(id.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
