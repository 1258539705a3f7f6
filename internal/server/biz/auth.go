package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/log"
	"github.com/DavidSemke/TechstackApi/internal/models"
)

type AuthConfig struct {
	// SecretKey signs JWT tokens. A random key is generated when empty,
	// which invalidates sessions across restarts.
	SecretKey string `conf:"secret_key" yaml:"secret_key" json:"secret_key"`

	// TokenTTL is the token lifetime. Defaults to 7 days.
	TokenTTL time.Duration `conf:"token_ttl" yaml:"token_ttl" json:"token_ttl"`
}

type AuthServiceParams struct {
	fx.In

	Config AuthConfig
	DB     *gorm.DB
}

func NewAuthService(params AuthServiceParams) *AuthService {
	secretKey := params.Config.SecretKey
	if secretKey == "" {
		generated, err := GenerateSecretKey()
		if err != nil {
			panic(fmt.Errorf("failed to generate jwt secret key: %w", err))
		}

		secretKey = generated
	}

	tokenTTL := params.Config.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}

	return &AuthService{
		AbstractService: &AbstractService{db: params.DB},
		secretKey:       secretKey,
		tokenTTL:        tokenTTL,
	}
}

type AuthService struct {
	*AbstractService

	secretKey string
	tokenTTL  time.Duration
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hex.EncodeToString(hashedPassword), nil
}

// VerifyPassword verifies a password against a hash.
func VerifyPassword(hashedPassword, password string) error {
	decodedHashedPassword, err := hex.DecodeString(hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to decode hashed password: %w", err)
	}

	return bcrypt.CompareHashAndPassword(decodedHashedPassword, []byte(password))
}

// GenerateSecretKey generates a random secret key for JWT.
func GenerateSecretKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// GenerateJWTToken generates a JWT token for a user.
func (s *AuthService) GenerateJWTToken(ctx context.Context, user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateUser authenticates a user with username and password.
func (s *AuthService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := s.dbFromContext(ctx).
		Preload("Groups").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid username or password: %w", ErrInvalidPassword)
		}

		log.Error(ctx, "failed to get user", log.Cause(err))

		return nil, ErrInternal
	}

	err = VerifyPassword(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("invalid username or password: %w", ErrInvalidPassword)
	}

	log.Debug(ctx, "user authenticated", log.Uint("user_id", user.ID))

	return &user, nil
}

// AuthenticateJWTToken validates a JWT token and returns the user with
// group memberships loaded.
func (s *AuthService) AuthenticateJWTToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidJWT
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidJWT
	}

	rawUserID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidJWT
	}

	var user models.User

	err = s.dbFromContext(ctx).
		Preload("Groups").
		First(&user, uint(rawUserID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidJWT
		}

		log.Error(ctx, "failed to get user", log.Cause(err))

		return nil, ErrInternal
	}

	return &user, nil
}

// IdentityForUser builds the request identity for an authenticated user.
func IdentityForUser(user *models.User) authz.Identity {
	return authz.Identity{
		Type:     authz.IdentityTypeUser,
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.GroupNames(),
		IsAdmin:  user.IsAdmin,
	}
}
