package lobby

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"transcendent/backend/internal/clock"
	"transcendent/backend/internal/models"
	"transcendent/backend/pkg/npid"
)

// Registry stores lobbies. A lobby that has not been renewed within the expiry
// window is treated as gone by every read, whether or not its row still exists.
type Registry struct {
	db                *gorm.DB
	expiry            time.Duration
	defaultMaxPlayers int
	now               func() time.Time
}

type Option func(*Registry)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(db *gorm.DB, expiry time.Duration, defaultMaxPlayers int, opts ...Option) *Registry {
	r := &Registry{
		db:                db,
		expiry:            expiry,
		defaultMaxPlayers: defaultMaxPlayers,
		now:               clock.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsAlive reports whether l was renewed within window of now. The boundary is inclusive.
func IsAlive(l *models.Lobby, now time.Time, window time.Duration) bool {
	return !l.LastRenewed.Before(now.Add(-window))
}

// HostsLobby reports whether userID is the lobby's current host.
func HostsLobby(userID uint, l *models.Lobby) bool {
	return l != nil && l.HostingUserID == userID
}

func (r *Registry) DefaultMaxPlayers() int { return r.defaultMaxPlayers }

// Alive returns a query over lobbies that are alive at this instant. Callers
// that count and list should do both from one Alive query.
func (r *Registry) Alive(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Lobby{}).Scopes(aliveAt(r.now(), r.expiry))
}

func aliveAt(now time.Time, window time.Duration) func(*gorm.DB) *gorm.DB {
	cutoff := now.Add(-window)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("last_renewed >= ?", cutoff)
	}
}

// Create registers a new lobby hosted by hostingUserID.
func (r *Registry) Create(ctx context.Context, hostGUID, gameMode string, hostingUserID uint, maxPlayers int) (*models.Lobby, error) {
	switch {
	case hostGUID == "":
		return nil, fmt.Errorf("%w: host guid is required", models.ErrInvalidArgument)
	case gameMode == "":
		return nil, fmt.Errorf("%w: game mode is required", models.ErrInvalidArgument)
	case maxPlayers <= 0:
		return nil, fmt.Errorf("%w: max players must be positive, got %d", models.ErrInvalidArgument, maxPlayers)
	}

	now := r.now()
	lobby := models.Lobby{
		ID:            npid.New(),
		HostGUID:      hostGUID,
		GameMode:      gameMode,
		HostingUserID: hostingUserID,
		MaxPlayers:    maxPlayers,
		CreatedAt:     now,
		LastRenewed:   now,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&lobby).Error; err != nil {
		return nil, models.NewStorageError("create lobby", err)
	}
	return &lobby, nil
}

// Get returns the lobby with id, or nil if it does not exist or has expired.
func (r *Registry) Get(ctx context.Context, id npid.NPID) (*models.Lobby, error) {
	var lobby models.Lobby
	err := r.Alive(ctx).Where("id = ?", id).First(&lobby).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewStorageError("get lobby", err)
	}
	return &lobby, nil
}

// GetByHex is Get for the hex form of an id.
func (r *Registry) GetByHex(ctx context.Context, hexID string) (*models.Lobby, error) {
	id, err := npid.FromHex(hexID)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Owned is a lobby whose host has been verified. It can only be obtained
// from Authorize, and the mutations reserved to the host require it.
type Owned struct {
	lobby  *models.Lobby
	userID uint
}

func (o *Owned) Lobby() *models.Lobby { return o.lobby }

// Authorize checks that userID hosts l.
func (r *Registry) Authorize(userID uint, l *models.Lobby) (*Owned, bool) {
	if !HostsLobby(userID, l) {
		return nil, false
	}
	return &Owned{lobby: l, userID: userID}, true
}

// Renew pushes the lobby's expiry forward. It reports false when the lobby
// expired, was deleted or changed host since it was authorized.
func (r *Registry) Renew(ctx context.Context, o *Owned) (bool, error) {
	now := r.now()
	res := r.db.WithContext(ctx).Model(&models.Lobby{}).
		Scopes(aliveAt(now, r.expiry)).
		Where("id = ? AND hosting_user_id = ?", o.lobby.ID, o.userID).
		Update("last_renewed", now)
	if res.Error != nil {
		return false, models.NewStorageError("renew lobby", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	o.lobby.LastRenewed = now
	return true, nil
}

// Delete removes the lobby under the same conditions as Renew.
func (r *Registry) Delete(ctx context.Context, o *Owned) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND hosting_user_id = ?", o.lobby.ID, o.userID).
		Delete(&models.Lobby{})
	if res.Error != nil {
		return false, models.NewStorageError("delete lobby", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ChangeHost hands the lobby to userID at newHostGUID and renews it.
// It does not check that userID has any claim on the lobby.
func (r *Registry) ChangeHost(ctx context.Context, l *models.Lobby, userID uint, newHostGUID string) (bool, error) {
	if newHostGUID == "" {
		return false, fmt.Errorf("%w: host guid is required", models.ErrInvalidArgument)
	}

	now := r.now()
	res := r.db.WithContext(ctx).Model(&models.Lobby{}).
		Scopes(aliveAt(now, r.expiry)).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"hosting_user_id": userID,
			"host_guid":       newHostGUID,
			"last_renewed":    now,
		})
	if res.Error != nil {
		return false, models.NewStorageError("change host", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	l.HostingUserID = userID
	l.HostGUID = newHostGUID
	l.LastRenewed = now
	return true, nil
}

// PurgeExpired deletes the rows of lobbies that are no longer alive.
func (r *Registry) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-r.expiry)
	res := r.db.WithContext(ctx).Where("last_renewed < ?", cutoff).Delete(&models.Lobby{})
	if res.Error != nil {
		return 0, models.NewStorageError("purge lobbies", res.Error)
	}
	return res.RowsAffected, nil
}
