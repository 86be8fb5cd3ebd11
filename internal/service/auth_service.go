package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput holds the fields for creating a user account
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=100,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=100"`
	FullName string `json:"fullName" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager estimator viewer"`
}

// LoginInput holds login credentials
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService handles user registration, login and identity lookups
type AuthService struct {
	userRepo     *repository.UserRepository
	tokenManager *auth.TokenManager
	logger       *zap.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	userRepo *repository.UserRepository,
	tokenManager *auth.TokenManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// Register creates a new user account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*domain.UserDTO, error) {
	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, input.Email, input.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Only an authenticated admin may assign a role. Anonymous
	// self-registrations always start as viewers.
	role := domain.RoleViewer
	if input.Role != "" {
		if userCtx, ok := auth.FromContext(ctx); ok && userCtx.Role == domain.RoleAdmin {
			role = domain.UserRole(input.Role)
		}
	}

	user := &domain.User{
		Email:          input.Email,
		Username:       input.Username,
		HashedPassword: string(hashed),
		FullName:       input.FullName,
		Role:           role,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("userID", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*domain.TokenDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		s.logger.Warn("failed login attempt",
			zap.String("email", input.Email),
		)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenManager.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("userID", user.ID.String()),
		zap.String("email", user.Email),
	)

	return &domain.TokenDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
		User:        mapper.ToUserDTO(user),
	}, nil
}

// CurrentUser returns the account of the authenticated caller
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}
