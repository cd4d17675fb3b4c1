package matchmaking

import (
	"context"

	"transcendent/backend/internal/lobby"
	"transcendent/backend/internal/models"
)

// Finder lists joinable lobbies.
type Finder struct {
	lobbies *lobby.Registry
}

func NewFinder(lobbies *lobby.Registry) *Finder {
	return &Finder{lobbies: lobbies}
}

// Result is one evaluation of a matchmaking query. Count and Lobbies always
// describe the same set.
type Result struct {
	lobbies []models.Lobby
}

func (r *Result) Count() int { return len(r.lobbies) }

func (r *Result) Lobbies() []models.Lobby { return r.lobbies }

// Each calls fn for every lobby in the result until fn returns false.
func (r *Result) Each(fn func(models.Lobby) bool) {
	for _, l := range r.lobbies {
		if !fn(l) {
			return
		}
	}
}

// FindGames returns the alive lobbies whose game mode is exactly gameMode, in
// no particular order.
func (f *Finder) FindGames(ctx context.Context, gameMode string) (*Result, error) {
	var lobbies []models.Lobby
	if err := f.lobbies.Alive(ctx).Where("game_mode = ?", gameMode).Find(&lobbies).Error; err != nil {
		return nil, models.NewStorageError("find games", err)
	}
	return &Result{lobbies: lobbies}, nil
}
