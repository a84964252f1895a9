// Package auth orchestrates registration, login, logout and profile access.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/security/token"
	"github.com/fastygo/tasktrack/repository"
)

// PasswordHasher is satisfied by *password.Hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
	Equalize(plaintext string)
}

// TokenIssuer is satisfied by *token.Issuer.
type TokenIssuer interface {
	Issue(userID string) (token.Token, error)
	Verify(raw string) (token.Claims, error)
}

// FieldCipher is satisfied by *fieldcipher.Cipher.
type FieldCipher interface {
	EncryptFields(fields map[string]string, names ...string) (map[string]string, error)
}

// RegisterInput is the raw registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the raw login request.
type LoginInput struct {
	Email    string
	Password string
}

type UseCase struct {
	users       repository.UserRepository
	hasher      PasswordHasher
	issuer      TokenIssuer
	cipher      FieldCipher
	revocations repository.RevocationRepository
	piiFields   []string
	logger      *zap.Logger
}

// New wires the auth use case. cipher and revocations may be nil: without a
// cipher profiles go out in plaintext, without a denylist logout is
// client-side only.
func New(
	users repository.UserRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	cipher FieldCipher,
	revocations repository.RevocationRepository,
	piiFields []string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:       users,
		hasher:      hasher,
		issuer:      issuer,
		cipher:      cipher,
		revocations: revocations,
		piiFields:   piiFields,
		logger:      logger,
	}
}

func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	name, err := domain.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if err := uc.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	digest, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: digest}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return uc.openSession(user)
}

func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, domain.Invalid("password is required")
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.hasher.Equalize(in.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := uc.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		uc.logger.Error("stored credential is malformed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return uc.openSession(user)
}

// Logout revokes rawToken when a denylist is configured. Invalid or expired
// tokens have nothing left to revoke and are ignored.
func (uc *UseCase) Logout(ctx context.Context, rawToken string) error {
	if uc.revocations == nil || rawToken == "" {
		return nil
	}
	claims, err := uc.issuer.Verify(rawToken)
	if err != nil || claims.ID == "" {
		return nil
	}
	revocation := domain.Revocation{
		TokenID:   claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt,
	}
	if err := uc.revocations.Revoke(ctx, revocation); err != nil {
		uc.logger.Error("failed to revoke token", zap.String("user_id", claims.Subject), zap.Error(err))
		return err
	}
	return nil
}

func (uc *UseCase) GetProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	user, err := uc.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	return uc.profileOf(user)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, identity domain.Identity, update domain.UserUpdate) (*domain.Profile, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if update.Empty() {
		return nil, domain.Invalid("provide at least one field to update")
	}

	var clean domain.UserUpdate
	if update.Name != nil {
		name, err := domain.NormalizeName(*update.Name)
		if err != nil {
			return nil, err
		}
		clean.Name = &name
	}
	if update.Email != nil {
		email, err := domain.NormalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		if err := uc.ensureEmailFree(ctx, email, identity.UserID); err != nil {
			return nil, err
		}
		clean.Email = &email
	}

	user, err := uc.users.Update(ctx, identity.UserID, clean)
	if err != nil {
		return nil, err
	}
	return uc.profileOf(user)
}

// ensureEmailFree fails when email belongs to anyone but owner. The unique
// index still has the final word on concurrent writers.
func (uc *UseCase) ensureEmailFree(ctx context.Context, email, owner string) error {
	existing, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != owner {
			return domain.ErrEmailTaken
		}
		return nil
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (uc *UseCase) openSession(user *domain.User) (*domain.Session, error) {
	tok, err := uc.issuer.Issue(user.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "issue token", err)
	}
	profile, err := uc.profileOf(user)
	if err != nil {
		return nil, err
	}
	return &domain.Session{User: *profile, Token: tok.Value, ExpiresAt: tok.ExpiresAt}, nil
}

// profileOf builds the outbound view, encrypting the configured PII fields.
func (uc *UseCase) profileOf(user *domain.User) (*domain.Profile, error) {
	profile := &domain.Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if uc.cipher == nil || len(uc.piiFields) == 0 {
		return profile, nil
	}

	fields, err := uc.cipher.EncryptFields(map[string]string{
		"name":  profile.Name,
		"email": profile.Email,
	}, uc.piiFields...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "encrypt profile", err)
	}
	profile.Name = fields["name"]
	profile.Email = fields["email"]
	return profile, nil
}

