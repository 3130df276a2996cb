// Package store holds persistent user accounts and the stores that keep them
package store

import (
	"errors"
	"time"
)

// Status represents whether an account may log in
type Status string

const (
	StatusActive Status = "active"
	StatusBanned Status = "banned"
)

var (
	ErrUserExists       = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrInsufficientCoin = errors.New("not enough coin")
)

// User is a persistent account. Users are never deleted, only banned.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	Username   string    `json:"username" gorm:"uniqueIndex;not null"`
	Credential string    `json:"credential" gorm:"not null"`
	Status     Status    `json:"status" gorm:"not null;default:active"`
	Coin       int64     `json:"coin" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsBanned reports whether the account is banned
func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}
