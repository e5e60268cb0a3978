package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Invcxze/TaskTracker/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// SignUp registers a user and issues its opaque token.
func (s *AuthService) SignUp(email, fio, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	s.db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, "", fmt.Errorf("40901:user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		FIO:          fio,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.getOrCreateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LogIn verifies credentials and returns the user's token, reusing an
// existing one when present.
func (s *AuthService) LogIn(email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("40001:invalid email or password")
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("40301:user is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("40001:invalid email or password")
	}

	token, err := s.getOrCreateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// LogOut revokes the presented token. An absent or unknown key means the
// caller holds no session, which surfaces as permission denied.
func (s *AuthService) LogOut(key string) error {
	if key == "" {
		return fmt.Errorf("40301:user is not authenticated")
	}
	result := s.db.Where("`key` = ?", key).Delete(&model.AuthToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("40301:user is not authenticated")
	}
	return nil
}

// Authenticate resolves an opaque token key into its user.
func (s *AuthService) Authenticate(key string) (*model.User, error) {
	if key == "" {
		return nil, fmt.Errorf("40301:authentication credentials were not provided")
	}
	var token model.AuthToken
	if err := s.db.Preload("User").Where("`key` = ?", key).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40301:invalid token")
		}
		return nil, err
	}
	if token.User == nil || !token.User.IsActive {
		return nil, fmt.Errorf("40301:user is disabled")
	}
	return token.User, nil
}

func (s *AuthService) getOrCreateToken(userID uint) (string, error) {
	var token model.AuthToken
	err := s.db.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return token.Key, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	key := generateTokenKey()
	token = model.AuthToken{Key: key, UserID: userID}
	if err := s.db.Create(&token).Error; err != nil {
		return "", err
	}
	return key, nil
}

func generateTokenKey() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
