package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/models"
	"github.com/alvine998/marketplace-backend/repository"
)

const tokenTTL = 24 * time.Hour

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the signin payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued JWT and basic profile data.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, *ServiceError)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, *ServiceError)
}

type authServiceImpl struct {
	users     repository.UserRepository
	jwtSecret []byte
	logger    *zap.Logger
}

func NewAuthService(users repository.UserRepository, jwtSecret []byte, logger *zap.Logger) AuthService {
	return &authServiceImpl{users: users, jwtSecret: jwtSecret, logger: logger}
}

func (s *authServiceImpl) Register(ctx context.Context, req *RegisterRequest) (*models.User, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, &ServiceError{StatusCode: 409, Message: "Email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, ErrInternal("Failed to register user")
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     req.Name,
		Role:     "user",
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, ErrInternal("Failed to register user")
	}

	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 401, Message: "Invalid credentials"}
		}
		s.logger.Error("Failed to fetch user", zap.Error(err))
		return nil, ErrInternal("Failed to login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid credentials"}
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, ErrInternal("Failed to login")
	}

	return &LoginResponse{Token: signed, User: user}, nil
}
