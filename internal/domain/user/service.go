// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"github.com/your-org/kupipodariday-backend/internal/pkg/auth"
)

// Mailer delivers the password reset link
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, userEmail, userName, resetToken string) error
}

// Service handles user business logic
type Service struct {
	repo      Repository
	config    *config.Config
	passwords *auth.PasswordManager
	tokens    *auth.JWTManager
	mailer    Mailer
	log       *logrus.Logger
}

// NewService creates a new user service
func NewService(repo Repository, cfg *config.Config, mailer Mailer, log *logrus.Logger) *Service {
	return &Service{
		repo:      repo,
		config:    cfg,
		passwords: auth.NewPasswordManager(cfg),
		tokens:    auth.NewJWTManager(cfg),
		mailer:    mailer,
		log:       log,
	}
}

// SignupRequest represents user registration data
type SignupRequest struct {
	Username    string `json:"username" binding:"required,min=2,max=64"`
	DisplayName string `json:"display_name" binding:"max=200"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Avatar      string `json:"avatar" binding:"omitempty,url"`
}

// SigninRequest represents user login data
type SigninRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries a partial profile update; nil fields are left untouched
type UpdateProfileRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=2,max=64"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Avatar      *string `json:"avatar" binding:"omitempty,url"`
	Password    *string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User *User `json:"user"`
	*auth.TokenPair
}

// Signup creates a new user account
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	taken, err := s.repo.Taken(ctx, req.Username, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.New(apperrors.ErrConflict, "user with this username or email already exists")
	}

	digest, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrValidation, err.Error())
	}

	u := &User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Password:    digest,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")

	return s.authResponse(u)
}

// Signin authenticates a user by username and password
func (s *Service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid username or password")
		}
		return nil, err
	}

	if err := s.passwords.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid username or password")
	}

	return s.authResponse(u)
}

// Refresh exchanges a refresh token for a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid refresh token")
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.authResponse(u)
}

func (s *Service) authResponse(u *User) (*AuthResponse, error) {
	pair, err := s.tokens.IssuePair(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: u, TokenPair: pair}, nil
}

// GetByID returns the user with the given id
func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByUsername returns the user with the given username
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Find looks users up by a username or email fragment
func (s *Service) Find(ctx context.Context, query string) ([]User, error) {
	if query == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "query must not be empty")
	}
	return s.repo.Search(ctx, query)
}

// UpdateProfile merges the present fields into the user record
func (s *Service) UpdateProfile(ctx context.Context, id uint, req *UpdateProfileRequest) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		req.Username = &username
	}
	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		req.Email = &email
	}

	if req.Username != nil || req.Email != nil {
		username, email := u.Username, u.Email
		if req.Username != nil {
			username = *req.Username
		}
		if req.Email != nil {
			email = *req.Email
		}
		taken, err := s.repo.Taken(ctx, username, email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.New(apperrors.ErrConflict, "user with this username or email already exists")
		}
	}

	updates := make(map[string]interface{})
	if req.Username != nil {
		u.Username = *req.Username
		updates["username"] = u.Username
	}
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
		updates["display_name"] = u.DisplayName
	}
	if req.Email != nil {
		u.Email = *req.Email
		updates["email"] = u.Email
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
		updates["avatar"] = u.Avatar
	}
	if req.Password != nil {
		digest, err := s.passwords.HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrValidation, err.Error())
		}
		u.Password = digest
		updates["password"] = digest
	}

	if err := s.repo.Updates(ctx, u, updates); err != nil {
		return nil, err
	}

	return u, nil
}

// RequestPasswordReset stores a reset token and mails it. Unknown emails are
// accepted silently so the endpoint cannot be used to discover accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := time.Now().UTC().Add(s.config.Security.PasswordResetTTL)
	err = s.repo.Updates(ctx, u, map[string]interface{}{
		"password_reset_token":  token,
		"password_reset_expiry": expiry,
	})
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, u.Email, u.GetDisplayName(), token); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	s.log.WithField("user_id", u.ID).Info("password reset requested")
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	u, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.New(apperrors.ErrValidation, "invalid or expired reset token")
		}
		return err
	}

	if u.PasswordResetExpiry == nil || time.Now().UTC().After(*u.PasswordResetExpiry) {
		return apperrors.New(apperrors.ErrValidation, "invalid or expired reset token")
	}

	digest, err := s.passwords.HashPassword(password)
	if err != nil {
		return apperrors.New(apperrors.ErrValidation, err.Error())
	}

	err = s.repo.Updates(ctx, u, map[string]interface{}{
		"password":              digest,
		"password_reset_token":  nil,
		"password_reset_expiry": nil,
	})
	if err != nil {
		return err
	}

	s.log.WithField("user_id", u.ID).Info("password reset completed")
	return nil
}
