package models

import "time"

// Session is a bearer credential issued at login. A user holds at most one
// session at a time; logging in again replaces the previous one.
type Session struct {
	Token      string    `gorm:"primaryKey;size:512"`
	UserID     uint      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	LastActive time.Time `gorm:"not null;index"`
	Active     bool      `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
