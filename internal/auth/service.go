package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/murmures-api/internal/config"
	"github.com/elskow/murmures-api/internal/notify"
)

const (
	MessageRegistered    = "Please confirm your registration by checking your mailbox"
	MessageLoggedIn      = "Login successful"
	MessageLoggedOut     = "Logout successful"
	MessageResetSent     = "Password reset email sent"
	MessagePasswordReset = "Password reset successfully"
)

// Service runs the account lifecycle: registration, activation, sessions
// and password resets.
type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	tokens     *TokenIssuer
	hasher     Hasher
	notifier   notify.Notifier
	metrics    *Metrics
	now        func() time.Time
}

type LoginResult struct {
	User    *PublicUser
	Token   string
	MaxAge  time.Duration
	Message string
}

func NewService(
	config *config.AuthConfig,
	log *zap.Logger,
	repo Repository,
	tokens *TokenIssuer,
	hasher Hasher,
	notifier notify.Notifier,
	metrics *Metrics,
) *Service {
	return &Service{
		config:     config,
		log:        log,
		repository: repo,
		tokens:     tokens,
		hasher:     hasher,
		notifier:   notifier,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Register stores a pending account and mails its activation link.
func (s *Service) Register(ctx context.Context, in RegisterInput) (message string, err error) {
	defer func() { s.metrics.observe(opRegister, err) }()

	in.normalize()
	if err := in.Validate(); err != nil {
		return "", validationError(err)
	}

	exists, err := s.userExists(ctx, in.Email, in.Username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyRegistered
	}

	if _, err := s.repository.FindPendingAccount(ctx, in.Email, in.Username); err == nil {
		return "", ErrCheckEmail
	} else if !errors.Is(err, ErrPendingNotFound) {
		return "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.MintActivation(in.Email)
	if err != nil {
		return "", err
	}

	pending := &PendingAccount{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Token:        token,
		Avatar:       in.Avatar,
		ExpiresAt:    s.now().Add(s.tokens.ActivationTTL()),
	}

	if err := s.repository.CreatePendingAccount(ctx, pending); err != nil {
		if errors.Is(err, ErrUserExists) || errors.Is(err, ErrPendingExists) {
			return "", ErrAlreadyRegistered
		}
		return "", fmt.Errorf("create pending account: %w", err)
	}

	if err := s.notifier.SendActivation(ctx, in.Email, token); err != nil {
		// Undelivered activation links would otherwise block the address
		// until the pending account expires.
		if delErr := s.repository.DeletePendingAccount(context.WithoutCancel(ctx), pending.ID); delErr != nil {
			s.log.Error("failed to remove undelivered pending account",
				zap.String("email", in.Email),
				zap.Error(delErr))
		}
		return "", fmt.Errorf("%w: send activation: %w", ErrUpstream, err)
	}

	s.log.Info("pending account created", zap.String("username", in.Username))
	return MessageRegistered, nil
}

// ActivateByToken promotes the pending account owning token to a user.
// Any error means the activation failed.
func (s *Service) ActivateByToken(ctx context.Context, token string) (user *PublicUser, err error) {
	defer func() { s.metrics.observe(opActivate, err) }()

	email, err := s.tokens.VerifyActivation(token)
	if err != nil {
		return nil, err
	}

	pending, err := s.repository.GetPendingAccountByToken(ctx, email, token)
	if err != nil {
		return nil, err
	}

	created, err := s.repository.PromotePendingAccount(ctx, pending)
	if err != nil {
		return nil, err
	}

	s.log.Info("account activated",
		zap.String("user_id", created.ID.String()),
		zap.String("username", created.Username))
	return created.Public(), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (result *LoginResult, err error) {
	defer func() { s.metrics.observe(opLogin, err) }()

	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	var user *User
	if emailPattern.MatchString(in.Identifier) {
		user, err = s.repository.GetUserByEmail(ctx, normalizeEmail(in.Identifier))
	} else {
		user, err = s.repository.GetUserByUsername(ctx, in.Identifier)
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrIncorrectCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	token, err := s.tokens.MintSession(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:    user.Public(),
		Token:   token,
		MaxAge:  s.tokens.SessionTTL(),
		Message: MessageLoggedIn,
	}, nil
}

// CurrentUser resolves a session token to its user. Every failure to do so
// other than a store error is reported as ErrNoSession.
func (s *Service) CurrentUser(ctx context.Context, token string) (user *PublicUser, err error) {
	defer func() { s.metrics.observe(opCurrentUser, err) }()

	if token == "" {
		return nil, ErrNoSession
	}

	subject, err := s.tokens.VerifySession(token)
	if err != nil {
		s.log.Debug("session token rejected", zap.Error(err))
		return nil, ErrNoSession
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrNoSession
	}

	found, err := s.repository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	return found.Public(), nil
}

// Logout has no server-side state to drop; sessions are stateless.
func (s *Service) Logout() string {
	s.metrics.observe(opLogout, nil)
	return MessageLoggedOut
}

// ForgotPassword issues a reset token, replacing any previous one. The token
// stays stored even when the mail cannot be delivered.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordInput) (message string, err error) {
	defer func() { s.metrics.observe(opForgotPassword, err) }()

	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return "", validationError(err)
	}

	user, err := s.repository.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrEmailNotFound
		}
		return "", err
	}

	token, err := NewResetToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.config.ResetTokenTTL)
	if err := s.repository.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	if err := s.notifier.SendReset(ctx, user.Email, token); err != nil {
		return "", fmt.Errorf("%w: send reset: %w", ErrUpstream, err)
	}

	return MessageResetSent, nil
}

func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) (message string, err error) {
	defer func() { s.metrics.observe(opResetPassword, err) }()

	if err := in.Validate(); err != nil {
		return "", validationError(err)
	}

	user, err := s.repository.GetUserByResetToken(ctx, in.Token, s.now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidResetLink
		}
		return "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	if err := s.repository.ConsumeResetToken(ctx, user.ID, in.Token, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidResetLink
		}
		return "", err
	}

	s.log.Info("password reset", zap.String("user_id", user.ID.String()))
	return MessagePasswordReset, nil
}

// PurgeExpiredPending deletes pending accounts whose activation window has closed.
func (s *Service) PurgeExpiredPending(ctx context.Context) (removed int64, err error) {
	defer func() { s.metrics.observe(opSweepPending, err) }()
	return s.repository.DeleteExpiredPendingAccounts(ctx, s.now())
}

func (s *Service) userExists(ctx context.Context, email, username string) (bool, error) {
	if _, err := s.repository.GetUserByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	if _, err := s.repository.GetUserByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	return false, nil
}
