package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// ErrBadCredentials marks a failed login attempt. Deliberately silent on
// whether the email or the password was wrong.
var ErrBadCredentials = errors.New("invalid email or password")

// InterfaceUserService defines the staff account interface
type InterfaceUserService interface {
	GetAllUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// Authenticate verifies a login and returns the account on success
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// UserService manages staff accounts
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{DB: db, Config: cfg}
}

// 1 GetAllUsers returns staff accounts with pagination
func (s *UserService) GetAllUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.DB.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// 2 GetUserByID returns one staff account
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// 3 Authenticate checks a login against the stored bcrypt hash
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrBadCredentials
	}
	if !models.CheckPasswordHash(password, user.Password) {
		return nil, ErrBadCredentials
	}
	return &user, nil
}
