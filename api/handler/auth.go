package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/middleware"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	appLogger "github.com/fastygo/tasktrack/pkg/logger"
	authUC "github.com/fastygo/tasktrack/usecase/auth"
)

// FieldOpener reverses outbound field encryption on values clients echo back.
type FieldOpener interface {
	DecryptFields(fields map[string]string, names ...string) (map[string]string, error)
}

type AuthHandler struct {
	baseHandler
	uc      *authUC.UseCase
	cookies CookiePolicy
	opener  FieldOpener
}

// NewAuthHandler builds the auth endpoints. opener may be nil when no
// profile fields are encrypted.
func NewAuthHandler(uc *authUC.UseCase, cookies CookiePolicy, opener FieldOpener, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookies:     cookies,
		opener:      opener,
	}
}

// @Summary Register a new account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RegisterRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	session, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.cookies.set(ctx, session.Token, session.ExpiresAt)
	h.respondSuccess(ctx, http.StatusCreated, session)
}

// @Summary Log in
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.LoginRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	session, err := h.uc.Login(stdCtx, authUC.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.cookies.set(ctx, session.Token, session.ExpiresAt)
	h.respondSuccess(ctx, http.StatusOK, session)
}

// @Summary Log out
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, middleware.CredentialsFrom(ctx).Token()); err != nil {
		// the cookie is cleared regardless; the token simply stays valid until it expires
		appLogger.WithRequestID(stdCtx, h.logger).Warn("logout without server-side revocation", zap.Error(err))
	}
	h.cookies.clear(ctx)
	h.respondJSON(ctx, http.StatusOK, transport.NewMessage("logged out successfully"))
}

// @Summary Get profile
// @Tags auth
// @Success 200 {object} transport.Envelope
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, identity)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Router /api/v1/auth/profile [put]
func (h *AuthHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ProfileUpdateRequest
	if err := transport.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	req, err := h.openEchoed(req)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if err := transport.Validate(&req); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	update := domain.UserUpdate{Name: req.Name, Email: req.Email}
	profile, err := h.uc.UpdateProfile(stdCtx, identity, update)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// openEchoed decrypts profile fields a client sent back in their encrypted form.
func (h *AuthHandler) openEchoed(req transport.ProfileUpdateRequest) (transport.ProfileUpdateRequest, error) {
	if h.opener == nil {
		return req, nil
	}
	fields := req.Fields()
	for _, name := range transport.ProfileFields {
		if _, ok := fields[name]; !ok {
			continue
		}
		opened, err := h.opener.DecryptFields(fields, name)
		if err != nil {
			return req, domain.Invalid(name + " could not be decrypted")
		}
		fields = opened
	}
	return req.WithFields(fields), nil
}
