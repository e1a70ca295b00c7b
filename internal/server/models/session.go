package models

import "time"

type Session struct {
	ID           int64
	AccountID    int64
	Token        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	LastAccessed time.Time
	IPAddress    string
	UserAgent    string
	IsActive     bool
}
