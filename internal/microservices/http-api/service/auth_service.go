package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/access"
	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Throttle limits how often a key may be hit. The Redis limiter satisfies it.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

type AuthService interface {
	// Signup creates a user account, or reuses the one matching both
	// username and email, and mails it a confirmation code.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// RequestCode mails a fresh confirmation code to an existing account.
	RequestCode(ctx context.Context, email string) error
	// ExchangeCode trades a valid confirmation code for a token pair.
	ExchangeCode(ctx context.Context, email, code string) (*dto.TokenResponse, error)
	Login(ctx context.Context, username, password string) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Revoke(ctx context.Context, refreshToken string) error
	// Authenticate resolves an access token to the current state of its user.
	Authenticate(ctx context.Context, accessToken string) (*access.Actor, error)
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	codes            *auth.CodeGenerator
	tokens           *auth.TokenIssuer
	mailer           notification.Sender
	throttle         Throttle
	logger           *logrus.Logger
	now              func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	mailer notification.Sender,
	throttle Throttle,
	cfg *config.Config,
	logger *logrus.Logger,
) AuthService {
	if throttle == nil {
		throttle = unlimited{}
	}
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		codes:            auth.NewCodeGenerator(cfg.JWTSecret, cfg.ConfirmationCodeTTL),
		tokens:           auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		mailer:           mailer,
		throttle:         throttle,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	v := &ValidationError{}
	validateUsername(v, username)
	validateEmail(v, email)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	byName, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	byEmail, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	var user *models.User
	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		user = byName
	case byName != nil:
		return nil, NewValidationError("username", "a user with that username already exists")
	case byEmail != nil:
		return nil, NewValidationError("email", "a user with that email already exists")
	default:
		user = &models.User{Username: username, Email: email, Role: access.RoleUser}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, NewValidationError("username", "a user with that username or email already exists")
			}
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User signed up")
	}

	if err := s.sendCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) RequestCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "this field is required")
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "user")
	}
	return s.sendCode(ctx, user)
}

func (s *authService) sendCode(ctx context.Context, user *models.User) error {
	allowed, err := s.throttle.Allow(ctx, "code:"+strings.ToLower(user.Email))
	if err != nil {
		// fail open, a broken throttle must not lock everybody out
		s.logger.WithError(err).Warn("Confirmation code throttle unavailable")
		allowed = true
	}
	if !allowed {
		return ErrTooManyRequests
	}

	code := s.codes.Make(codeSubject(user))
	if err := s.mailer.Send(ctx, notification.ConfirmationMessage(user.Email, code)); err != nil {
		return fmt.Errorf("send confirmation code: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID}).Info("Confirmation code sent")
	return nil
}

func (s *authService) ExchangeCode(ctx context.Context, email, code string) (*dto.TokenResponse, error) {
	v := &ValidationError{}
	if strings.TrimSpace(email) == "" {
		v.Add("email", "this field is required")
	}
	if strings.TrimSpace(code) == "" {
		v.Add("confirmation_code", "this field is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !s.codes.Check(codeSubject(user), strings.TrimSpace(code)) {
		s.logger.WithFields(logrus.Fields{"user_id": user.ID}).Warn("Rejected confirmation code")
		return nil, ErrInvalidConfirmationCode
	}
	return s.startSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, err
		}
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if !user.HasUsablePassword() {
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, user)
}

// startSession records the login, which also spends any outstanding
// confirmation code, and issues a token pair.
func (s *authService) startSession(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("Session started")
	return pair, nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	jti := uuid.New().String()
	refresh, expires, err := s.tokens.IssueRefresh(user.ID, jti)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Create(ctx, &models.RefreshToken{
		ID:        jti,
		UserID:    user.ID,
		ExpiresAt: expires,
	}); err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Refresh: refresh, Access: accessToken}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	record, err := s.refreshTokenRepo.FindByID(ctx, claims.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if record.Revoked {
		// a revoked token coming back means it leaked; end every session
		s.logger.WithFields(logrus.Fields{"user_id": record.UserID, "jti": record.ID}).Warn("Revoked refresh token reused")
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, record.UserID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}
	if s.now().After(record.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, record.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.refreshTokenRepo.Revoke(ctx, record.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		// nothing to revoke
		return nil
	}
	return s.refreshTokenRepo.Revoke(ctx, claims.ID)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*access.Actor, error) {
	claims, err := s.tokens.Parse(accessToken, auth.AccessToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, fmt.Errorf("%w: token has expired", ErrUnauthenticated)
		}
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user.Actor(), nil
}

func codeSubject(u *models.User) auth.CodeSubject {
	return auth.CodeSubject{
		UserID:       u.ID,
		PasswordHash: u.Password,
		Email:        u.Email,
		LastLogin:    u.LastLogin,
	}
}
