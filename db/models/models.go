// Package models defines the gorm schemas for the sqlite persistence backend.
package models

import "time"

type RateLimit struct {
	UserID            int64 `gorm:"primaryKey"`
	LastInteractionAt *time.Time
	BlockedUntil      *time.Time
	CommandCount      int
	LastNotifiedAt    *time.Time
	UpdatedAt         time.Time
}

type UserState struct {
	UserID    int64  `gorm:"primaryKey"`
	Step      string `gorm:"size:64"`
	Artifacts string // JSON-encoded list of asset references
	TicketID  int64
	UpdatedAt time.Time
}

type Verification struct {
	UserID           int64 `gorm:"primaryKey"`
	ProfileImage     string
	TransactionImage string
	TransactionHash  string
	Feedback         string
	UpdatedAt        time.Time
}

type Ticket struct {
	UserID       int64 `gorm:"primaryKey"`
	TicketID     int64 `gorm:"index"`
	IssueImage   string
	IssueDetails string
	UpdatedAt    time.Time
}
