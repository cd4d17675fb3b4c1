package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"transcendent/backend/internal/models"
)

// Store looks up accounts and verifies their passwords.
type Store struct {
	db   *gorm.DB
	cost int
}

func NewStore(db *gorm.DB, bcryptCost int) *Store {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{db: db, cost: bcryptCost}
}

// Find returns the user with the given name, or nil if there is none.
func (s *Store) Find(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewStorageError("find user", err)
	}
	return &user, nil
}

// Create adds an account with a bcrypt hash of password.
func (s *Store) Create(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", models.ErrInvalidArgument)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, models.NewStorageError("create user", err)
	}
	return &user, nil
}

// Authenticate returns the user when the credentials match, nil otherwise.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" {
		return nil, nil
	}
	user, err := s.Find(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}
	if !CheckPassword(user, password) {
		return nil, nil
	}
	return user, nil
}

func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
