package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `json:"id" bson:"id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	IsAdmin      bool      `json:"is_admin" bson:"is_admin"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

// AuthToken is an issued access token with its subject.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type UserRepository interface {
	Insert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit int) ([]User, error)
	Count(ctx context.Context) (int64, error)
}

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*AuthToken, error)
	Login(ctx context.Context, email, password string) (*AuthToken, error)
	VerifyToken(ctx context.Context, token string) (*User, error)
}
