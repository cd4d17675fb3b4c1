package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"transcendent/backend/internal/clock"
	"transcendent/backend/internal/models"
	"transcendent/backend/pkg/jwt"
)

// Store issues and validates session tokens.
type Store struct {
	db          *gorm.DB
	secret      string
	idleTimeout time.Duration
	now         func() time.Time
}

type Option func(*Store)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(db *gorm.DB, secret string, idleTimeout time.Duration, opts ...Option) *Store {
	s := &Store{
		db:          db,
		secret:      secret,
		idleTimeout: idleTimeout,
		now:         clock.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create replaces every session the user holds with a fresh one.
func (s *Store) Create(ctx context.Context, user *models.User) (*models.Session, error) {
	now := s.now()
	token, err := jwt.GenerateToken(s.secret, user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session := models.Session{
		Token:      token,
		UserID:     user.ID,
		CreatedAt:  now,
		LastActive: now,
		Active:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The user row lock orders concurrent logins of the same account.
		var locked models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, user.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&session).Error
	})
	if err != nil {
		return nil, models.NewStorageError("create session", err)
	}
	return &session, nil
}

// GetIfActive returns the session for token when it is active and has been
// used within the idle timeout, refreshing its last activity. A nil session
// with a nil error means the token does not authorize anything.
func (s *Store) GetIfActive(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	userID, err := jwt.ParseToken(s.secret, token)
	if err != nil {
		return nil, nil
	}

	now := s.now()
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("token = ? AND user_id = ? AND active = ? AND last_active >= ?", token, userID, true, now.Add(-s.idleTimeout)).
		Update("last_active", now)
	if res.Error != nil {
		return nil, models.NewStorageError("touch session", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var session models.Session
	err = s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Logged out between the touch and the read.
		return nil, nil
	}
	if err != nil {
		return nil, models.NewStorageError("get session", err)
	}
	return &session, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("token = ?", session.Token).Delete(&models.Session{}).Error; err != nil {
		return models.NewStorageError("delete session", err)
	}
	return nil
}

// DeleteUserSessions invalidates every session of a user.
func (s *Store) DeleteUserSessions(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return models.NewStorageError("delete user sessions", err)
	}
	return nil
}

// PurgeIdle removes sessions that can no longer pass GetIfActive.
func (s *Store) PurgeIdle(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.idleTimeout)
	res := s.db.WithContext(ctx).
		Where("active = ? OR last_active < ?", false, cutoff).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, models.NewStorageError("purge sessions", res.Error)
	}
	return res.RowsAffected, nil
}
