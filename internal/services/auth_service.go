package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	apperrors "taskboard.dev/taskboard/internal/errors"
	model "taskboard.dev/taskboard/internal/models"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/session"
)

// AuthService issues and validates bearer tokens. A token is only
// valid while its session exists in the store, so logout takes effect
// immediately regardless of JWT expiry.
type AuthService struct {
	users    *repository.UserRepository
	sessions session.Store
	secret   []byte
	ttl      time.Duration
	logger   *logrus.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	sessions session.Store,
	secret string,
	ttl time.Duration,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// Login verifies the credentials and returns a signed bearer token
// plus the authenticated user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, apperrors.ErrAccountDisabled
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	if err := s.sessions.Put(ctx, token, user.ID, s.ttl); err != nil {
		return "", nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return token, user, nil
}

// Logout invalidates the session behind a token. Unknown tokens are
// a no-op so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token to its user. The signature,
// the expiry, the session and the active flag must all check out.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, apperrors.ErrUnauthorized
	}

	userID, err := s.sessions.Get(ctx, token)
	if err != nil || userID != claims.Subject {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !user.Active {
		return nil, apperrors.ErrAccountDisabled
	}

	return user, nil
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, name, email, string(hash), isAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"admin":   isAdmin,
	}).Info("user registered")
	return user, nil
}
