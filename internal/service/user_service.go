package service

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrMissingField       = errors.New("missing required field")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository is the persistence surface the user service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
}

// TokenIssuer mints signed identity tokens.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// UserService handles registration and login.
type UserService struct {
	repo   UserRepository
	tokens TokenIssuer
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

// Register creates a new user with a bcrypt-hashed password. No token is
// issued on registration. The duplicate pre-check is advisory; the unique
// index on users.username is the actual guard, so an insert-time duplicate
// maps to the same conflict error.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingField
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logger.Error().Err(err).Msg("Error checking existing user")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Username: username, Password: string(hash)}
	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	return createdUser, nil
}

// Login verifies credentials and returns a signed token. An unknown
// username and a wrong password fail with the same error so the response
// carries no enumeration signal; the hash comparison is constant time.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		logger.Error().Err(err).Msg("Error looking up user")
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}
