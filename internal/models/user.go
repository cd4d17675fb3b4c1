package models

import "gorm.io/gorm"

// User represents an account that can log in and host lobbies.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
}
