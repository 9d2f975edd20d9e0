package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kshadid/thegiftspace/internal/domain"
)

type AuthService struct {
	users       domain.UserRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	adminEmails []string
}

type AuthServiceDependencies struct {
	Users       domain.UserRepository
	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails []string
}

func NewAuthService(deps AuthServiceDependencies) domain.AuthService {
	ttl := deps.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &AuthService{
		users:       deps.Users,
		jwtSecret:   []byte(deps.JWTSecret),
		tokenTTL:    ttl,
		adminEmails: deps.AdminEmails,
	}
}

func (s *AuthService) Register(ctx context.Context, params domain.RegisterParams) (*domain.AuthToken, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(params.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           xid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: string(hash),
		IsAdmin:      s.isAdminEmail(email),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// VerifyToken parses and validates a bearer token and resolves its subject.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, subject)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*domain.AuthToken, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.AuthToken{
		AccessToken: signed,
		TokenType:   "bearer",
		User:        *user,
	}, nil
}

func (s *AuthService) isAdminEmail(email string) bool {
	for _, admin := range s.adminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}
