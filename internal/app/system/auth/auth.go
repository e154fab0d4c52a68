package auth

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ibbtech/memberhub/internal/domain/models"
)

// Principal is the authenticated caller injected into r.Context().
type Principal struct {
	MemberID primitive.ObjectID
	UID      string
	Nome     string
	Email    string
	Role     string
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentPrincipal returns the caller and a found flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

// TokenVerifier validates a bearer token with the identity provider and
// returns the provider uid and email it asserts.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uid, email string, err error)
}

// MemberLookup resolves a provider uid to the local member document.
type MemberLookup interface {
	GetByProviderUID(ctx context.Context, uid string) (*models.Member, error)
}

// Authenticate verifies the Authorization bearer token and injects the
// matching member as the request principal. Requests without a token pass
// through unauthenticated; RequireSignedIn and RequireRole decide whether
// that is acceptable.
func Authenticate(verifier TokenVerifier, members MemberLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid, email, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				logger.Debug("bearer token rejected", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			m, err := members.GetByProviderUID(r.Context(), uid)
			if err != nil {
				logger.Debug("no member for verified uid",
					zap.String("uid", uid), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			r = WithPrincipal(r, &Principal{
				MemberID: m.ID,
				UID:      uid,
				Nome:     m.Nome,
				Email:    email,
				Role:     m.Role,
			})
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn ensures a principal is present, else 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the principal carries one of the allowed roles.
// Missing principal yields 401, wrong role 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToUpper(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentPrincipal(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, has := set[strings.ToUpper(p.Role)]; !has {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns r with the principal stored in its context.
// Exposed for handler tests.
func WithPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
