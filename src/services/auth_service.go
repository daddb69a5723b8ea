package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/models"
)

const bcryptCost = 11

var (
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegisterInput is the signup form.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type AuthService struct {
	db     *gorm.DB
	secret string
	ttl    time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{db: db, secret: secret, ttl: ttl}
}

// Register creates the account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	switch {
	case !usernameRegex.MatchString(username):
		return nil, "", fmt.Errorf("%w: username must be 3-20 letters, digits or underscores", ErrValidation)
	case !emailRegex.MatchString(email):
		return nil, "", fmt.Errorf("%w: invalid email", ErrValidation)
	case len(in.Password) < 6 || len(in.Password) > 72:
		return nil, "", fmt.Errorf("%w: password must have 6-72 characters", ErrValidation)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(username)).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", fmt.Errorf("%w: username %q is taken", ErrConflict, username)
	}
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", fmt.Errorf("%w: email is already registered", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}
	user := models.User{
		Username:    username,
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := lib.GenerateJWT(user.ID, user.Username, s.secret, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login accepts either the username or the email as login.
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = ? OR email = ?", login, login).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := lib.GenerateJWT(user.ID, user.Username, s.secret, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// ViewerFromToken verifies the token and that its user still exists.
func (s *AuthService) ViewerFromToken(ctx context.Context, token string) (*Viewer, error) {
	userID, _, err := lib.VerifyJWT(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Select("id, username").Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return &Viewer{UserID: user.ID, Username: user.Username}, nil
}

// Me loads the full account of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
