package services

import (
	"context"
	"errors"
	"regexp"

	"gorm.io/gorm"

	"taskflow/backend/internal/auth"
	apperrors "taskflow/backend/internal/errors"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/repositories"
)

// emailPattern accepts the basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult carries a freshly minted token together with the
// password-redacted user view.
type AuthResult struct {
	Token string
	User  *models.User
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
}

type AuthServiceImpl struct {
	users  repositories.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
}

func NewAuthService(users repositories.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register validates in a fixed order: presence, email shape, password
// strength, confirmation. The confirmation check is enforced here even
// though the client validates it too; the server never trusts client
// validation.
func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, apperrors.ErrMissingFields
	}

	if !emailPattern.MatchString(req.Email) {
		return nil, apperrors.ErrInvalidEmail
	}

	if len(req.Password) < minPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	if req.Password != req.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login deliberately reports unknown email and wrong password with the
// same error so callers cannot probe which emails are registered.
func (s *AuthServiceImpl) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(req.Password, user.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}
