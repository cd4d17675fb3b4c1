package models

import (
	"time"

	"transcendent/backend/pkg/npid"
)

// Lobby represents a hosted game that other players can find and join.
// HostGUID addresses the current host's network endpoint and is unrelated
// to the hosting user's account id.
type Lobby struct {
	ID            npid.NPID `gorm:"primaryKey"`
	HostGUID      string    `gorm:"size:255;not null"`
	GameMode      string    `gorm:"size:64;not null;index"`
	HostingUserID uint      `gorm:"not null;index"`
	MaxPlayers    int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	LastRenewed   time.Time `gorm:"not null;index"`

	HostingUser User `gorm:"foreignKey:HostingUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
