package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie Clerk's frontend SDK stores the session token in.
const SessionCookie = "__session"

// SessionVerifier turns a session token into verified claims.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*clerk.SessionClaims, error)
}

// ClerkVerifier verifies Clerk session JWTs, caching signing keys by key ID.
type ClerkVerifier struct {
	jwksClient *jwks.Client

	mu   sync.RWMutex
	keys map[string]*clerk.JSONWebKey
}

func NewClerkVerifier(secretKey string) *ClerkVerifier {
	return &ClerkVerifier{
		jwksClient: jwks.NewClient(&clerk.ClientConfig{
			BackendConfig: clerk.BackendConfig{Key: clerk.String(secretKey)},
		}),
		keys: make(map[string]*clerk.JSONWebKey),
	}
}

// Verify implements SessionVerifier.
func (v *ClerkVerifier) Verify(ctx context.Context, token string) (*clerk.SessionClaims, error) {
	unverified, err := jwt.Decode(ctx, &jwt.DecodeParams{Token: token})
	if err != nil {
		return nil, err
	}

	jwk, err := v.key(ctx, unverified.KeyID)
	if err != nil {
		return nil, err
	}

	return jwt.Verify(ctx, &jwt.VerifyParams{Token: token, JWK: jwk})
}

func (v *ClerkVerifier) key(ctx context.Context, kid string) (*clerk.JSONWebKey, error) {
	v.mu.RLock()
	jwk, ok := v.keys[kid]
	v.mu.RUnlock()
	if ok {
		return jwk, nil
	}

	jwk, err := jwt.GetJSONWebKey(ctx, &jwt.GetJSONWebKeyParams{
		KeyID:      kid,
		JWKSClient: v.jwksClient,
	})
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.keys[kid] = jwk
	v.mu.Unlock()

	return jwk, nil
}

// AuthMiddleware resolves and enforces Clerk sessions.
type AuthMiddleware struct {
	server   *server.Server
	verifier SessionVerifier
}

// NewAuthMiddleware builds an AuthMiddleware backed by Clerk.
func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return NewAuthMiddlewareWithVerifier(s, NewClerkVerifier(s.Config.Auth.SecretKey))
}

func NewAuthMiddlewareWithVerifier(s *server.Server, v SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		server:   s,
		verifier: v,
	}
}

// sessionToken reads a bearer token from the Authorization header, falling
// back to the __session cookie that browsers send on form posts.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

// ResolveSession sets user_id, user_role and permissions on the Echo
// context when the request carries a valid session. It never rejects a
// request: handlers decide what an anonymous caller gets.
func (auth *AuthMiddleware) ResolveSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := sessionToken(c.Request())
		if token == "" {
			return next(c)
		}

		start := time.Now()

		claims, err := auth.verifier.Verify(c.Request().Context(), token)
		if err != nil {
			auth.server.Logger.Debug().
				Err(err).
				Str("function", "ResolveSession").
				Str("request_id", GetRequestID(c)).
				Dur("duration", time.Since(start)).
				Msg("ignoring invalid session token")
			return next(c)
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, claims.ActiveOrganizationRole)
		c.Set(PermissionsKey, claims.ActiveOrganizationPermissions)

		auth.server.Logger.Debug().
			Str("function", "ResolveSession").
			Str("user_id", claims.Subject).
			Str("request_id", GetRequestID(c)).
			Dur("duration", time.Since(start)).
			Msg("session resolved")

		return next(c)
	}
}

// RequireAuth rejects requests that ResolveSession left anonymous.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if GetUserID(c) == "" {
			auth.server.Logger.Warn().
				Str("function", "RequireAuth").
				Str("request_id", GetRequestID(c)).
				Msg("could not get session claims from context")

			return errs.NewUnauthorizedError("Unauthorized", false)
		}
		return next(c)
	}
}
