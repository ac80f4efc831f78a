package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campuseats/internal/database"
	"campuseats/internal/model"
)

const minPasswordLen = 6

var (
	ErrLoginTaken          = errors.New("login already exists")
	ErrInvalidCredentials  = errors.New("invalid login or password")
	ErrInvalidRegistration = errors.New("invalid registration")

	ErrRestaurantSignupDenied = errors.New("restaurant signup code required")
)

type UserRepository interface {
	Create(ctx context.Context, u model.User) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
}

type AuthService struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration

	restaurantCode string
}

func NewAuthService(users UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

// RequireRestaurantCode restricts restaurant registrations to callers that
// present code. An empty code leaves restaurant signup open.
func (s *AuthService) RequireRestaurantCode(code string) *AuthService {
	s.restaurantCode = code
	return s
}

type RegisterInput struct {
	Name                 string     `json:"name"`
	Login                string     `json:"email"`
	Password             string     `json:"password"`
	PasswordConfirmation string     `json:"password_confirmation"`
	Role                 model.Role `json:"role"`
	Phone                string     `json:"phone"`
	Cedula               string     `json:"cedula"`
	SignupCode           string     `json:"signup_code,omitempty"`
}

func (in RegisterInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRegistration)
	case in.Login == "":
		return fmt.Errorf("%w: email is required", ErrInvalidRegistration)
	case in.Password != in.PasswordConfirmation:
		return fmt.Errorf("%w: passwords do not match", ErrInvalidRegistration)
	case len(in.Password) < minPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLen)
	case !in.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRegistration, in.Role)
	}
	if _, err := mail.ParseAddress(in.Login); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidRegistration)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Login = strings.ToLower(strings.TrimSpace(in.Login))
	if in.Role == "" {
		in.Role = model.RoleStudent
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Role == model.RoleRestaurant && s.restaurantCode != "" &&
		subtle.ConstantTimeCompare([]byte(in.SignupCode), []byte(s.restaurantCode)) != 1 {
		return nil, ErrRestaurantSignupDenied
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Login:        in.Login,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Phone:        strings.TrimSpace(in.Phone),
		Cedula:       strings.TrimSpace(in.Cedula),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.GetByLogin(ctx, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs an HS256 token carrying the user's id, name and role.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    string(user.Role),
		"exp":     jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
