package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mwhitlock/todo-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration, login, and bearer-token
// operations. Tokens are HS256 JWTs carrying a jti claim; logout revokes
// the presented token's jti until the token expires on its own.
type AuthService struct {
	users      domain.UserRepository
	tokens     domain.TokenRepository
	jwtSecret  []byte
	bcryptCost int
	tokenTTL   time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, jwtSecret string, bcryptCost int, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
	}
}

// Register creates a new user account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(name) > 100 {
		return nil, "", fmt.Errorf("%w: name must be at most 100 characters", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", domain.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate jwt: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and returns a signed token string.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}

	return token, nil
}

// ValidateToken parses and validates a token string, rejecting revoked
// tokens. Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (int64, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	userID, err := subjectID(claims)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return 0, domain.ErrUnauthorized
	}
	revoked, err := s.tokens.IsRevoked(ctx, jti)
	if err != nil {
		return 0, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return 0, domain.ErrUnauthorized
	}

	return userID, nil
}

// Logout revokes the presented token. The token must still verify;
// revoking an already-invalid token is pointless.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return domain.ErrUnauthorized
	}

	userID, err := subjectID(claims)
	if err != nil {
		return domain.ErrUnauthorized
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return domain.ErrUnauthorized
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.ErrUnauthorized
	}

	revoked := &domain.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: exp.Time,
	}
	if err := s.tokens.Revoke(ctx, revoked); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(sub, 10, 64)
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"jti":   uuid.NewString(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
