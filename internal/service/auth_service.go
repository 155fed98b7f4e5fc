package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// ErrInvalidCredentials is returned for unknown accounts and wrong passwords
// alike, so login responses never reveal which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRefreshToken is returned when a refresh token is expired or malformed.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// AuthService issues and refreshes JWT token pairs.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenPairResponse, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenPairResponse, error)
}

type authService struct {
	users         repository.UserRepository
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		users:         users,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		validator:     validate,
		logger:        logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenPairResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenPairResponse{}, err
	}

	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(payload.Login))
	if err != nil {
		return dto.TokenPairResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Warn().Uint("user_id", user.ID).Msg("failed login attempt")
		return dto.TokenPairResponse{}, ErrInvalidCredentials
	}

	return s.issuePair(user.ID, user.Role, user.SchoolID, dto.NewUserResponse(user))
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenPairResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenPairResponse{}, err
	}

	token, err := jwt.Parse(payload.RefreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidRefreshToken
		}
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return dto.TokenPairResponse{}, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dto.TokenPairResponse{}, ErrInvalidRefreshToken
	}

	var userID uint
	switch subject := claims["sub"].(type) {
	case float64:
		userID = uint(subject)
	case string:
		parsed, err := strconv.ParseUint(subject, 10, 64)
		if err != nil {
			return dto.TokenPairResponse{}, ErrInvalidRefreshToken
		}
		userID = uint(parsed)
	default:
		return dto.TokenPairResponse{}, ErrInvalidRefreshToken
	}
	if userID == 0 {
		return dto.TokenPairResponse{}, ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return dto.TokenPairResponse{}, ErrInvalidRefreshToken
	}

	return s.issuePair(user.ID, user.Role, user.SchoolID, dto.NewUserResponse(user))
}

func (s *authService) issuePair(userID uint, role string, schoolID *uint, user dto.UserResponse) (dto.TokenPairResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	accessClaims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	if schoolID != nil {
		accessClaims["school_id"] = *schoolID
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.accessSecret))
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	refreshClaims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.refreshSecret))
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	return dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}
