package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/security/token"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	appLogger "github.com/fastygo/tasktrack/pkg/logger"
	"github.com/fastygo/tasktrack/repository"
)

// SessionCookie is the cookie the session token travels in.
const SessionCookie = "token"

// TokenVerifier is satisfied by *token.Issuer.
type TokenVerifier interface {
	Verify(raw string) (token.Claims, error)
}

// Credentials are the raw token transports found on a request.
type Credentials struct {
	Cookie        string
	Authorization string
}

// CredentialsFrom reads the session cookie and Authorization header.
func CredentialsFrom(ctx *fasthttp.RequestCtx) Credentials {
	return Credentials{
		Cookie:        string(ctx.Request.Header.Cookie(SessionCookie)),
		Authorization: string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)),
	}
}

// Token returns the cookie token, falling back to a Bearer header.
func (c Credentials) Token() string {
	if tok := strings.TrimSpace(c.Cookie); tok != "" {
		return tok
	}
	scheme, tok, ok := strings.Cut(strings.TrimSpace(c.Authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Guard resolves a request's credentials to an authenticated identity.
type Guard struct {
	verifier    TokenVerifier
	users       repository.UserRepository
	revocations repository.RevocationRepository
	logger      *zap.Logger
}

// NewGuard builds a guard. revocations may be nil when logout is client-side only.
func NewGuard(verifier TokenVerifier, users repository.UserRepository, revocations repository.RevocationRepository, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		verifier:    verifier,
		users:       users,
		revocations: revocations,
		logger:      logger,
	}
}

// Authenticate fails with domain.ErrUnauthenticated for any missing, invalid,
// expired or revoked token and for subjects that no longer exist. Only
// storage outages surface as something else.
func (g *Guard) Authenticate(ctx context.Context, creds Credentials) (domain.Identity, error) {
	raw := creds.Token()
	if raw == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	claims, err := g.verifier.Verify(raw)
	if err != nil {
		appLogger.WithRequestID(ctx, g.logger).Debug("session token rejected", zap.Error(err))
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	if g.revocations != nil && claims.ID != "" {
		revoked, err := g.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.Identity{}, err
		}
		if revoked {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
	}

	if _, err := g.users.GetByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
		return domain.Identity{}, err
	}

	return domain.Identity{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Authenticate gates next behind the guard and records the caller's identity
// on the request for handlers to pass along.
func Authenticate(guard *Guard, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			identity, err := guard.Authenticate(stdCtx, CredentialsFrom(ctx))
			cancel()
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					writeError(ctx, http.StatusUnauthorized, domain.ErrUnauthenticated)
					return
				}
				appLogger.WithRequestID(stdCtx, logger).Error("authentication lookup failed", zap.Error(err))
				writeError(ctx, http.StatusServiceUnavailable, domain.ErrStoreUnavailable)
				return
			}

			httpcontext.SetIdentity(ctx, identity)
			next(ctx)
		}
	}
}

func writeError(ctx *fasthttp.RequestCtx, status int, err *domain.Error) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(transport.NewError(string(err.Code), err.Message, nil).Bytes())
}
